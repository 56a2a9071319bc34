/*
Package report holds the per-file outcomes of a campaign run.

	  worker 1 --+
	  worker 2 --+--> Add (mutex) --> Report --> Summary / Err / JSON / Diff
	  worker n --+

🎯 Purpose:
- Record one FileOutcome per path, append-only
- List outcomes in declared path order regardless of completion order
- Tell "nothing changed" apart from "something failed"

⚡ Statuses:
- unchanged, rewritten, would-rewrite (dry run)
- read-error, write-error (computed content and diff are kept)
- skipped (cancelled before scheduling)
*/
package report
