package recovery

type builtinPattern struct {
	expr  string
	build Builder
}

// fallbackSuggestion is returned when no pattern matches.
var fallbackSuggestion = Suggestion{
	Fix: "Review the error message, correct the configuration, and retry the deployment.",
}

// builtinPatterns returns the default pattern set. Order matters: more
// specific patterns come first so their suggestions lead the report.
func builtinPatterns() []builtinPattern {
	return []builtinPattern{
		{
			expr: `(?i)parent`,
			build: func(string) Suggestion {
				return Suggestion{
					Fix:     "Create the referenced parent category first, or remove the parent reference.",
					Check:   "The parent slug matches an existing category in the categories section.",
					Command: "configurator diff --include categories",
				}
			},
		},
		{
			expr: `(?i)not found|does not exist|no such`,
			build: func(string) Suggestion {
				return Suggestion{
					Fix:   "Ensure every referenced entity exists before the entity that references it.",
					Check: "Referenced slugs and names are spelled exactly as declared in their own section.",
				}
			},
		},
		{
			expr: `(?i)unauthorized|permission|forbidden|access denied`,
			build: func(string) Suggestion {
				return Suggestion{
					Fix:   "Use an API token with MANAGE permissions for the affected entity type.",
					Check: "The token has not expired and targets the right environment.",
				}
			},
		},
		{
			expr: `(?i)timeout|timed out|connection refused|network|no route to host|EOF`,
			build: func(string) Suggestion {
				return Suggestion{
					Fix:     "Verify the platform URL is reachable and retry.",
					Check:   "Network connectivity and any proxy or VPN configuration.",
					Command: "curl -sSf $CONFIGURATOR_URL/health",
				}
			},
		},
		{
			expr: `(?i)already exists|duplicate|unique constraint`,
			build: func(string) Suggestion {
				return Suggestion{
					Fix:   "Rename the conflicting entity or remove the stale remote copy before recreating it.",
					Check: "Natural keys (slug or name) are unique within each section.",
				}
			},
		},
		{
			expr: `(?i)rate limit|too many requests|429`,
			build: func(string) Suggestion {
				return Suggestion{
					Fix:     "Lower the deployment concurrency and retry.",
					Command: "configurator deploy --concurrency 1",
				}
			},
		},
		{
			expr: `(?i)invalid|validation|required field|must be`,
			build: func(string) Suggestion {
				return Suggestion{
					Fix:   "Correct the invalid field value reported above in the desired-state document.",
					Check: "Field values satisfy the platform's constraints (currencies, country codes, enums).",
				}
			},
		},
	}
}
