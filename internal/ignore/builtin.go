package ignore

// builtinPatterns lists artifacts that never appear in a rendered tree.
var builtinPatterns = []string{
	// version control metadata
	".git/",
	".svn/",
	".hg/",
	// build output
	"bin/",
	"obj/",
	"build/",
	"dist/",
	"out/",
	"target/",
	// editor and IDE metadata
	".vs/",
	".vscode/",
	".idea/",
	// dependency caches
	"node_modules/",
	"packages/",
	"bower_components/",
	"vendor/",
	"__pycache__/",
	".venv/",
	// logs, caches and backups
	"*.log",
	"*.cache",
	"*.tmp",
	"*.bak",
	"*.swp",
	"*.pyc",
	"*.user",
	"*.suo",
}

var builtinRules = compileBuiltinRules()

func compileBuiltinRules() RuleSet {
	compiled := make(RuleSet, 0, len(builtinPatterns))
	for _, pattern := range builtinPatterns {
		compiled = append(compiled, MustCompilePattern(pattern, ""))
	}
	return compiled
}

// BuiltinRules returns the fixed rule set applied to every traversal.
// The returned set is shared; callers derive new sets with Extend.
func BuiltinRules() RuleSet {
	return builtinRules[:len(builtinRules):len(builtinRules)]
}
