// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"regexp"
	"strings"

	"github.com/walteh/rewriterc/pkg/text"
)

// DotnetTests is the name of the built-in catalog for C# test suites
const DotnetTests = "dotnet-tests"

// cancellationToken is what trimmed calls get as their last argument
const cancellationToken = "It.IsAny<CancellationToken>()"

// argList matches an argument list with at most one level of nested parentheses
const argList = `((?:[^()]|\([^()]*\))*)`

// DotnetTestsRuleSets returns the rule sets of the dotnet-tests catalog in
// application order. Every set is idempotent.
func DotnetTestsRuleSets() []*text.RuleSet {
	return []*text.RuleSet{
		helperCleanup(),
		readonlyProperties(),
		methodSignatures(),
		typeConversions(),
		mockSetups(),
		controllerResults(),
		dtoConstruction(),
		entityConstruction(),
		serviceDependencies(),
		authorizationHandler(),
		moqUsing(),
	}
}

// DotnetTestHelpers is the name of the catalog that adds entity factory
// helpers to test classes. dotnet-tests removes the same helpers, so the two
// catalogs are alternatives.
const DotnetTestHelpers = "dotnet-test-helpers"

// DotnetTestHelpersRuleSets returns the rule sets of the dotnet-test-helpers catalog
func DotnetTestHelpersRuleSets() []*text.RuleSet {
	return []*text.RuleSet{entityHelpers()}
}

// entityFactories are the helper methods as signature and body
var entityFactories = [][2]string{
	{"private static User CreateUser(string name, string email, UserRole role, bool isActive = true)",
		"return new User(name, email, role, isActive);"},
	{"private static AuditLog CreateAuditLog(string action, string details, Guid? userId = null, string ipAddress = null, string userAgent = null)",
		"return new AuditLog(action, details, userId, ipAddress, userAgent);"},
	{"private static UserSession CreateUserSession(Guid userId, string token, DateTime expiresAt)",
		"return new UserSession(userId, token, expiresAt);"},
	{"private static Fee CreateFee(Guid studentId, decimal amount, FeeType feeType, string description)",
		"return new Fee(studentId, amount, feeType, description);"},
	{"private static Performance CreatePerformance(Guid studentId, Guid facultyId, string subject, decimal score)",
		"return new Performance(studentId, facultyId, subject, score);"},
}

// helperMethods renders entityFactories, each preceded by a blank line and
// indented one level below indent
func helperMethods(indent string) string {
	var b strings.Builder
	for _, f := range entityFactories {
		b.WriteString("\n\n" + indent + "    " + f[0] + "\n")
		b.WriteString(indent + "    {\n")
		b.WriteString(indent + "        " + f[1] + "\n")
		b.WriteString(indent + "    }")
	}
	return b.String()
}

func entityHelpers() *text.RuleSet {
	return &text.RuleSet{
		Name: "entity-helpers",
		Description: "Appends entity factory helpers to the end of test classes that do not have them yet. " +
			"The closing brace is the first one at the class's own indentation followed only by braces.",
		Rules: []*text.Rule{
			text.MustNew(text.Definition{
				ID: "add-entity-helpers",
				Match: text.MatchSpec{
					Pattern:   `^([ \t]*)(public class \w+Tests?\b[^{]*\{.*?)(\n\1\})(\s*(?:\}\s*)*)\z`,
					Multiline: true,
					DotAll:    true,
					Engine:    text.EngineRegexp2,
				},
				Replace: text.ReplaceSpec{Template: `\1\2` + helperMethods(`\1`) + `\3\4`},
				Unless:  "CreateUser(",
			}),
		},
	}
}

func helperCleanup() *text.RuleSet {
	pattern := ""
	for _, f := range entityFactories {
		pattern += `\s*` + regexp.QuoteMeta(f[0][:strings.Index(f[0], "(")]) + `\([^}]*\}`
	}
	return &text.RuleSet{
		Name: "helper-cleanup",
		Description: "Removes the entity factory helpers that dotnet-test-helpers adds, together with the blank lines before them. " +
			"Runs first so later sets see the test class without them.",
		Rules: []*text.Rule{
			text.MustNew(text.Definition{
				ID:    "remove-entity-helpers",
				Match: text.MatchSpec{Pattern: pattern},
			}),
		},
	}
}

func readonlyProperties() *text.RuleSet {
	return &text.RuleSet{
		Name: "readonly-properties",
		Description: "Comments out assignments to properties that became read-only. " +
			"Rules are anchored at the start of a line so commented lines never match again.",
		Rules: []*text.Rule{
			text.MustNew(text.Definition{
				ID:      "comment-id-assignment",
				Match:   text.MatchSpec{Pattern: `^([ \t]*)(\w+)\.Id = ([^;\n]+);`, Multiline: true},
				Replace: text.ReplaceSpec{Template: `\1// \2.Id = \3; // read-only, set through the constructor`},
			}),
			text.MustNew(text.Definition{
				ID:      "comment-readonly-assignment",
				Match:   text.MatchSpec{Pattern: `^([ \t]*)(\w+)\.(Name|Token|Timestamp|Details|IsSuccess) = ([^;\n]+);`, Multiline: true},
				Replace: text.ReplaceSpec{Template: `\1// \2.\3 = \4; // read-only, set through the constructor`},
			}),
		},
	}
}

func methodSignatures() *text.RuleSet {
	return &text.RuleSet{
		Name: "method-signatures",
		Description: "Brings repository and service calls in line with their current signatures. " +
			"Independent rules; order does not matter.",
		Rules: []*text.Rule{
			text.MustNew(text.Definition{
				ID:      "get-by-action-cancellation",
				Match:   text.MatchSpec{Pattern: `\b(GetByActionAsync|GetUserAuditLogsAsync)\(` + argList + `\)`},
				Replace: text.ReplaceSpec{Func: KeepArguments(1, cancellationToken)},
			}),
			text.MustNew(text.Definition{
				ID:      "get-by-date-range-cancellation",
				Match:   text.MatchSpec{Pattern: `\b(GetByDateRangeAsync)\(` + argList + `\)`},
				Replace: text.ReplaceSpec{Func: KeepArguments(2, cancellationToken)},
			}),
			text.MustNew(text.Definition{
				ID:      "logout-session-id",
				Match:   text.MatchSpec{Pattern: `\.LogoutAsync\(([^,()]+)\)`},
				Replace: text.ReplaceSpec{Template: `.LogoutAsync(Guid.NewGuid(), \1, CancellationToken.None)`},
			}),
			text.MustNew(text.Definition{
				ID:      "get-all-drop-paging",
				Match:   text.MatchSpec{Pattern: `\.GetAllAsync\(\d+,\s*\d+\)`},
				Replace: text.ReplaceSpec{Template: `.GetAllAsync(CancellationToken.None)`},
			}),
			text.MustNew(text.Definition{
				ID:      "get-by-user-id-drop-paging",
				Match:   text.MatchSpec{Pattern: `\.GetByUserIdAsync\(([^,()]+),\s*\d+,\s*\d+\)`},
				Replace: text.ReplaceSpec{Template: `.GetByUserIdAsync(\1, CancellationToken.None)`},
			}),
		},
	}
}

func typeConversions() *text.RuleSet {
	return &text.RuleSet{
		Name:        "type-conversions",
		Description: "Adds fallbacks where nullable values are assigned to non-nullable properties and converts retention arguments to TimeSpan.",
		Rules: []*text.Rule{
			text.MustNew(text.Definition{
				ID:      "coalesce-nullable-role",
				Match:   text.MatchSpec{Pattern: `(\b\w+\.Role = )([^;\n]*\?[^;\n]*);`},
				Replace: text.ReplaceSpec{Func: CoalesceNullable("UserRole.Student")},
			}),
			text.MustNew(text.Definition{
				ID:      "coalesce-nullable-is-active",
				Match:   text.MatchSpec{Pattern: `(\b\w+\.IsActive = )([^;\n]*\?[^;\n]*);`},
				Replace: text.ReplaceSpec{Func: CoalesceNullable("false")},
			}),
			text.MustNew(text.Definition{
				ID:      "delete-older-than-timespan",
				Match:   text.MatchSpec{Pattern: `DeleteOlderThanAsync\(DateTime\.\w+(?:\.\w+\([^()]*\))*\)`},
				Replace: text.ReplaceSpec{Template: `DeleteOlderThanAsync(TimeSpan.FromDays(30))`},
			}),
		},
	}
}

func mockSetups() *text.RuleSet {
	return &text.RuleSet{
		Name: "mock-setups",
		Description: "Normalizes Moq setups. moq-returns must run before unwrap-task-from-result: " +
			"it turns Returns(Task.FromResult(x)) on async methods into ReturnsAsync(Task.FromResult(x)), " +
			"which the unwrap rule then reduces to ReturnsAsync(x).",
		Rules: []*text.Rule{
			text.MustNew(text.Definition{
				ID:      "strip-optional-default",
				Match:   text.MatchSpec{Pattern: `It\.IsAny<CancellationToken>\(\)\s*=>\s*default`},
				Replace: text.ReplaceSpec{Template: cancellationToken},
			}),
			text.MustNew(text.Definition{
				ID: "moq-returns",
				Match: text.MatchSpec{
					Pattern: `\.Setup\(\s*(\w+)\s*=>\s*\1\.(\w+)\(` + argList + `\)\s*\)\s*\.Returns(?:Async)?\(`,
					Engine:  text.EngineRegexp2,
				},
				Replace: text.ReplaceSpec{Func: MoqReturns},
			}),
			text.MustNew(text.Definition{
				ID:      "unwrap-task-from-result",
				Match:   text.MatchSpec{Pattern: `\.ReturnsAsync\(Task\.FromResult\(` + argList + `\)\)`},
				Replace: text.ReplaceSpec{Template: `.ReturnsAsync(\1)`},
			}),
		},
	}
}

func controllerResults() *text.RuleSet {
	return &text.RuleSet{
		Name:        "controller-results",
		Description: "Reads controller results through ActionResult<T>.Result. Only applies to controller tests.",
		Files:       []string{"**/*ControllerTests.cs"},
		Rules: []*text.Rule{
			text.MustNew(text.Definition{
				ID:      "cast-action-result",
				Match:   text.MatchSpec{Pattern: `^([ \t]*)var\s+(\w+)\s*=\s*\((\w+)\)\s*result;`, Multiline: true},
				Replace: text.ReplaceSpec{Template: `\1var \2 = result.Result as \3;\n\1Assert.That(\2, Is.Not.Null);`},
			}),
			text.MustNew(text.Definition{
				ID:      "as-action-result",
				Match:   text.MatchSpec{Pattern: `var\s+(\w+)\s*=\s*result\s+as\s+(\w+);`},
				Replace: text.ReplaceSpec{Template: `var \1 = result.Result as \2;`},
			}),
			text.MustNew(text.Definition{
				ID:      "assert-action-result-type",
				Match:   text.MatchSpec{Pattern: `Assert\.That\(result,\s*Is\.TypeOf<(\w+)>\(\)\);`},
				Replace: text.ReplaceSpec{Template: `Assert.That(result.Result, Is.TypeOf<\1>());`},
			}),
		},
	}
}

func dtoConstruction() *text.RuleSet {
	return &text.RuleSet{
		Name: "dto-construction",
		Description: "Replaces initializers of DTOs that lost their settable Name and IsSuccess properties. " +
			"Runs before entity-construction, which expands the User created for AuthResult.Success.",
		Rules: []*text.Rule{
			text.MustNew(text.Definition{
				ID:      "auth-result-success",
				Match:   text.MatchSpec{Pattern: `new AuthResult\s*\{[^}]*\bIsSuccess\s*=[^}]*\}`},
				Replace: text.ReplaceSpec{Template: `AuthResult.Success(new User { UserId = Guid.NewGuid(), Email = "test@example.com", FirstName = "Test", LastName = "User", Role = UserRole.Student })`},
			}),
			text.MustNew(text.Definition{
				ID:      "user-request-initializer",
				Match:   text.MatchSpec{Pattern: `new (CreateUserRequest|UpdateUserRequest)\s*\{[^}]*\bName\s*=[^}]*\}`},
				Replace: text.ReplaceSpec{Template: `new \1 { Email = "test@example.com", FirstName = "Test", LastName = "User", Role = UserRole.Student }`},
			}),
		},
	}
}

func serviceDependencies() *text.RuleSet {
	setup := `^([ \t]*)(\[SetUp\]\s*public void Setup\(\)\s*\{)`
	return &text.RuleSet{
		Name: "service-dependencies",
		Description: "Declares and initializes the audit service mock in service tests that use it without declaring it. " +
			"The field goes above the [SetUp] method and the initialization first in its body, so later setup lines can use it.",
		Files: []string{"**/*ServiceTests.cs"},
		Rules: []*text.Rule{
			text.MustNew(text.Definition{
				ID:      "declare-audit-service-mock",
				Match:   text.MatchSpec{Pattern: setup, Multiline: true},
				Replace: text.ReplaceSpec{Template: `\1private Mock<IAuditService> _mockAuditService;\n\n\1\2`},
				When:    "_mockAuditService",
				Unless:  "Mock<IAuditService> _mockAuditService",
				Limit:   1,
			}),
			text.MustNew(text.Definition{
				ID:      "init-audit-service-mock",
				Match:   text.MatchSpec{Pattern: setup, Multiline: true},
				Replace: text.ReplaceSpec{Template: `\1\2\n\1    _mockAuditService = new Mock<IAuditService>();`},
				When:    "_mockAuditService",
				Unless:  "_mockAuditService = new Mock<IAuditService>()",
				Limit:   1,
			}),
		},
	}
}

func authorizationHandler() *text.RuleSet {
	return &text.RuleSet{
		Name:        "authorization-handler",
		Description: "Makes the CreateUser helper of the authorization handler tests static so static test data can call it.",
		Files:       []string{"**/AuthorizationHandlerTests.cs"},
		Rules: []*text.Rule{
			text.MustNew(text.Definition{
				ID:      "static-create-user",
				Match:   text.MatchSpec{Literal: "private User CreateUser("},
				Replace: text.ReplaceSpec{Template: "private static User CreateUser("},
			}),
		},
	}
}

func entityConstruction() *text.RuleSet {
	return &text.RuleSet{
		Name: "entity-construction",
		Description: "Replaces object initializers of entities whose properties changed with a complete, valid initializer. " +
			"Replacements are fixed text, so a second pass rewrites each initializer to itself.",
		Rules: []*text.Rule{
			entityRule("user-initializer", "User",
				"UserId = Guid.NewGuid()",
				`Email = "test@example.com"`,
				`FirstName = "Test"`,
				`LastName = "User"`,
				"Role = UserRole.Student",
				"IsActive = true",
				"Provider = AuthProvider.Google",
			),
			entityRule("audit-log-initializer", "AuditLog",
				"AuditId = Guid.NewGuid()",
				`Action = "TestAction"`,
				`Resource = "TestResource"`,
				`IpAddress = "127.0.0.1"`,
				`UserAgent = "test-agent"`,
				"Success = true",
				"CreatedAt = DateTime.UtcNow",
			),
			entityRule("user-session-initializer", "UserSession",
				"SessionId = Guid.NewGuid()",
				"UserId = Guid.NewGuid()",
				`Token = "test-token"`,
				"ExpiresAt = DateTime.UtcNow.AddHours(1)",
				"CreatedAt = DateTime.UtcNow",
			),
			text.MustNew(text.Definition{
				ID:      "fee-initializer",
				Match:   text.MatchSpec{Pattern: `new Fee\s*\{.*\}`, Lazy: true, DotAll: true},
				Replace: text.ReplaceSpec{Template: initializer("Fee",
					"FeeId = Guid.NewGuid()",
					"StudentId = Guid.NewGuid()",
					"Amount = 100.00m",
					"FeeType = FeeType.Tuition",
					`Description = "Test Fee"`,
					"DueDate = DateTime.UtcNow.AddDays(30)",
					"CreatedAt = DateTime.UtcNow",
				)},
			}),
			entityRule("performance-initializer", "Performance",
				"PerformanceId = Guid.NewGuid()",
				"StudentId = Guid.NewGuid()",
				"FacultyId = Guid.NewGuid()",
				`Subject = "Test Subject"`,
				"Score = 85.5m",
				"MaxScore = 100.0m",
				"CreatedAt = DateTime.UtcNow",
			),
			text.MustNew(text.Definition{
				ID:      "external-user-info-initializer",
				Match:   text.MatchSpec{Pattern: `new ExternalUserInfo\s*\{[^}]*\bName\s*=\s*([^,}]+?)\s*(?:,[^}]*)?\}`},
				Replace: text.ReplaceSpec{Template: `new ExternalUserInfo { Id = "test-id", Email = "test@example.com", Name = \1, Provider = AuthProvider.Google }`},
			}),
		},
	}
}

func moqUsing() *text.RuleSet {
	return &text.RuleSet{
		Name:        "moq-using",
		Description: "Adds the Moq namespace import to files that create mocks without it.",
		Rules: []*text.Rule{
			text.MustNew(text.Definition{
				ID:      "add-moq-using",
				Match:   text.MatchSpec{Pattern: `\A`},
				Replace: text.ReplaceSpec{Template: `using Moq;\n`},
				When:    "Mock<",
				Unless:  "using Moq;",
			}),
		},
	}
}

func entityRule(id, typeName string, fields ...string) *text.Rule {
	return text.MustNew(text.Definition{
		ID:      id,
		Match:   text.MatchSpec{Pattern: `new ` + typeName + `\s*\{[^}]*\}`},
		Replace: text.ReplaceSpec{Template: initializer(typeName, fields...)},
	})
}

// initializer renders a multi-line object initializer. Field text must not
// contain backslashes.
func initializer(typeName string, fields ...string) string {
	var b strings.Builder
	b.WriteString("new " + typeName + "\n            {\n")
	for i, f := range fields {
		b.WriteString("                " + f)
		if i < len(fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("            }")
	return b.String()
}
