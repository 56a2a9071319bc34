/*
Package config loads rewrite campaigns from disk.

	            +-------------+
	            |   Config    |
	            | (campaign)  |
	            +------+------+
	                   |
	   +--------+------+-----+---------+
	   |        |            |         |
	+--+---+ +--+---+   +----+---+ +---+----+
	| YAML | | JSON |   |  HCL   | |  TOML  |
	+------+ +------+   +--------+ +--------+

🎯 Purpose:
- Parse a campaign file, picking the parser by extension
- Reject unknown fields in every format
- Fill defaults (root ".", concurrency GOMAXPROCS)
- Build the campaign into compiled text.RuleSets

🔄 Flow:
1. Find locates .rewriterc.* in the working directory, then the XDG config dir
2. Load reads the file and hands it to the registered Parser
3. Validate checks shape and fills defaults
4. Build resolves the catalog and named replace funcs and compiles every rule

🔍 Example:

	cfg, err := config.Load(ctx, ".rewriterc.yaml")
	if err != nil {
		return err
	}
	sets, err := cfg.Build()
	if err != nil {
		return err
	}
*/
package config
