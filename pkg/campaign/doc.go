/*
Package campaign runs rule sets over a list of files.

	            +-----------+
	 paths ---> | Campaign  | ---> report.Report
	            +-----+-----+
	                  | errgroup, SetLimit(n)
	      +-----------+-----------+
	      |           |           |
	+-----+----+ +----+-----+ +---+------+
	|  Rewrite | |  Rewrite | |  Rewrite |   one FileRewriter call per path
	+----------+ +----------+ +----------+
	 load -> fold sets -> compare -> write if changed

🎯 Purpose:
- Drive the read, transform, compare, write protocol for every path
- Keep each file's failure local to that file
- Record outcomes in declared path order

🔄 Flow:
1. New validates rule sets (unique rule ids) and de-duplicates paths
2. Run schedules one task per path, bounded by Concurrency
3. Each task loads, folds every applicable set in order and writes on change
4. Cancelling ctx stops new tasks; unscheduled paths are reported as skipped

🤝 Interfaces:
- Loader: whole-file reads
- Writer: all-or-nothing writes
*/
package campaign
