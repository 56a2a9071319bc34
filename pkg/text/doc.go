/*
Package text holds the rewrite rules: compiled match-and-replace units and the
ordered sets they are applied in.

	+-----------+      +-----------+      +-----------+
	|   Rule    | ---> |   Rule    | ---> |   Rule    |   one RuleSet
	| (match +  |      |           |      |           |
	|  replace) |      |           |      |           |
	+-----------+      +-----------+      +-----------+
	      ^ each rule scans the output of the previous one

🎯 Purpose:
- Compile literal and pattern matchers (re2 or regexp2)
- Expand back-reference templates or call replace funcs
- Thread one buffer through a set in declared order

⚡ Rules of the game:
- Matches are found left to right and never overlap
- Replacement output is never rescanned by the same application
- A rule that matches nothing returns its input string untouched
- A failing replace func leaves that occurrence as it was

🧪 Idempotence:
CheckIdempotent runs any set list twice; rule catalogs are expected to pass it.
*/
package text
