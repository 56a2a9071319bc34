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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/rewriterc/pkg/campaign"
	"github.com/walteh/rewriterc/pkg/text"
)

func ruleSet(t *testing.T, name string) *text.RuleSet {
	t.Helper()
	for _, s := range DotnetTestsRuleSets() {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("rule set %s not found", name)
	return nil
}

func TestDotnetTests_RuleSets(t *testing.T) {
	tests := []struct {
		name  string
		set   string
		path  string
		input string
		want  string
	}{
		{
			name:  "comments_readonly_assignments",
			set:   "readonly-properties",
			input: "        user.Id = Guid.NewGuid();\n        session.Token = \"abc\";\n        var id = user.Id;\n",
			want:  "        // user.Id = Guid.NewGuid(); // read-only, set through the constructor\n        // session.Token = \"abc\"; // read-only, set through the constructor\n        var id = user.Id;\n",
		},
		{
			name:  "trims_get_by_action",
			set:   "method-signatures",
			input: `_repo.Setup(x => x.GetByActionAsync("Login", 1, 10));`,
			want:  `_repo.Setup(x => x.GetByActionAsync("Login", It.IsAny<CancellationToken>()));`,
		},
		{
			name:  "leaves_correct_get_by_action",
			set:   "method-signatures",
			input: `_repo.Setup(x => x.GetByActionAsync("Login", It.IsAny<CancellationToken>()));`,
			want:  `_repo.Setup(x => x.GetByActionAsync("Login", It.IsAny<CancellationToken>()));`,
		},
		{
			name:  "trims_get_by_action_with_lambda_argument",
			set:   "method-signatures",
			input: `repo.GetByActionAsync(Where(u => u.Active, 1), "x", 5);`,
			want:  "repo.GetByActionAsync(Where(u => u.Active, 1), It.IsAny<CancellationToken>());",
		},
		{
			name:  "trims_get_by_date_range",
			set:   "method-signatures",
			input: "await repo.GetByDateRangeAsync(from, to, 1, 20);",
			want:  "await repo.GetByDateRangeAsync(from, to, It.IsAny<CancellationToken>());",
		},
		{
			name:  "adds_logout_session",
			set:   "method-signatures",
			input: "await service.LogoutAsync(token);",
			want:  "await service.LogoutAsync(Guid.NewGuid(), token, CancellationToken.None);",
		},
		{
			name:  "drops_paging",
			set:   "method-signatures",
			input: "repo.GetAllAsync(1, 10);\nrepo.GetByUserIdAsync(userId, 1, 10);",
			want:  "repo.GetAllAsync(CancellationToken.None);\nrepo.GetByUserIdAsync(userId, CancellationToken.None);",
		},
		{
			name:  "coalesces_nullable_assignments",
			set:   "type-conversions",
			input: "user.Role = request.Role?.Value;\nuser.IsActive = dto.IsActive?.Value;\nuser.Role = UserRole.Admin;",
			want:  "user.Role = (request.Role?.Value) ?? UserRole.Student;\nuser.IsActive = (dto.IsActive?.Value) ?? false;\nuser.Role = UserRole.Admin;",
		},
		{
			name:  "converts_retention_to_timespan",
			set:   "type-conversions",
			input: "await repo.DeleteOlderThanAsync(DateTime.UtcNow.AddDays(-30));",
			want:  "await repo.DeleteOlderThanAsync(TimeSpan.FromDays(30));",
		},
		{
			name:  "async_setup_returns_async",
			set:   "mock-setups",
			input: "_repo.Setup(x => x.GetAsync(id)).Returns(Task.FromResult(user));",
			want:  "_repo.Setup(x => x.GetAsync(id)).ReturnsAsync(user);",
		},
		{
			name:  "sync_setup_returns",
			set:   "mock-setups",
			input: "_repo.Setup(r => r.Count()).ReturnsAsync(5);",
			want:  "_repo.Setup(r => r.Count()).Returns(5);",
		},
		{
			name:  "nested_arguments_in_setup",
			set:   "mock-setups",
			input: "_repo.Setup(x => x.FindAsync(It.IsAny<Guid>(), It.IsAny<CancellationToken>() => default)).Returns(user);",
			want:  "_repo.Setup(x => x.FindAsync(It.IsAny<Guid>(), It.IsAny<CancellationToken>())).ReturnsAsync(user);",
		},
		{
			name:  "mismatched_lambda_is_left_alone",
			set:   "mock-setups",
			input: "_repo.Setup(x => y.GetAsync(id)).Returns(user);",
			want:  "_repo.Setup(x => y.GetAsync(id)).Returns(user);",
		},
		{
			name:  "controller_results",
			set:   "controller-results",
			path:  "tests/Api/UserControllerTests.cs",
			input: "var okResult = (OkObjectResult)result;\nvar nf = result as NotFoundObjectResult;\nAssert.That(result, Is.TypeOf<OkObjectResult>());",
			want:  "var okResult = result.Result as OkObjectResult;\nAssert.That(okResult, Is.Not.Null);\nvar nf = result.Result as NotFoundObjectResult;\nAssert.That(result.Result, Is.TypeOf<OkObjectResult>());",
		},
		{
			name:  "controller_results_skip_other_files",
			set:   "controller-results",
			path:  "tests/Api/UserServiceTests.cs",
			input: "var okResult = (OkObjectResult)result;",
			want:  "var okResult = (OkObjectResult)result;",
		},
		{
			name:  "auth_result_success",
			set:   "dto-construction",
			input: "var r = new AuthResult { IsSuccess = true, Token = \"t\" };",
			want:  `var r = AuthResult.Success(new User { UserId = Guid.NewGuid(), Email = "test@example.com", FirstName = "Test", LastName = "User", Role = UserRole.Student });`,
		},
		{
			name:  "user_requests",
			set:   "dto-construction",
			input: "var c = new CreateUserRequest { Name = \"Bob\", Email = e };\nvar u = new UpdateUserRequest\n{\n    Name = n\n};\nvar ok = new CreateUserRequest { FirstName = \"A\" };",
			want:  "var c = new CreateUserRequest { Email = \"test@example.com\", FirstName = \"Test\", LastName = \"User\", Role = UserRole.Student };\nvar u = new UpdateUserRequest { Email = \"test@example.com\", FirstName = \"Test\", LastName = \"User\", Role = UserRole.Student };\nvar ok = new CreateUserRequest { FirstName = \"A\" };",
		},
		{
			name:  "declares_and_initializes_audit_mock",
			set:   "service-dependencies",
			path:  "tests/Api/UserServiceTests.cs",
			input: "    [SetUp]\n    public void Setup()\n    {\n        _service = new UserService(_mockAuditService.Object);\n    }\n",
			want:  "    private Mock<IAuditService> _mockAuditService;\n\n    [SetUp]\n    public void Setup()\n    {\n        _mockAuditService = new Mock<IAuditService>();\n        _service = new UserService(_mockAuditService.Object);\n    }\n",
		},
		{
			name:  "initializes_declared_audit_mock",
			set:   "service-dependencies",
			path:  "tests/Api/UserServiceTests.cs",
			input: "    private Mock<IAuditService> _mockAuditService;\n    [SetUp] public void Setup() {\n    }\n",
			want:  "    private Mock<IAuditService> _mockAuditService;\n    [SetUp] public void Setup() {\n        _mockAuditService = new Mock<IAuditService>();\n    }\n",
		},
		{
			name:  "audit_mock_unused",
			set:   "service-dependencies",
			path:  "tests/Api/UserServiceTests.cs",
			input: "    [SetUp]\n    public void Setup()\n    {\n    }\n",
			want:  "    [SetUp]\n    public void Setup()\n    {\n    }\n",
		},
		{
			name:  "audit_mock_only_in_service_tests",
			set:   "service-dependencies",
			path:  "tests/Api/UserControllerTests.cs",
			input: "    [SetUp]\n    public void Setup()\n    {\n        x = _mockAuditService.Object;\n    }\n",
			want:  "    [SetUp]\n    public void Setup()\n    {\n        x = _mockAuditService.Object;\n    }\n",
		},
		{
			name:  "static_create_user",
			set:   "authorization-handler",
			path:  "tests/Api/AuthorizationHandlerTests.cs",
			input: "    private User CreateUser(UserRole role)\n    {",
			want:  "    private static User CreateUser(UserRole role)\n    {",
		},
		{
			name:  "user_initializer",
			set:   "entity-construction",
			input: "var u = new User { Id = 1, Name = \"x\" };\nvar s = new UserSession { };",
			want: "var u = " + initializer("User",
				"UserId = Guid.NewGuid()",
				`Email = "test@example.com"`,
				`FirstName = "Test"`,
				`LastName = "User"`,
				"Role = UserRole.Student",
				"IsActive = true",
				"Provider = AuthProvider.Google",
			) + ";\nvar s = " + initializer("UserSession",
				"SessionId = Guid.NewGuid()",
				"UserId = Guid.NewGuid()",
				`Token = "test-token"`,
				"ExpiresAt = DateTime.UtcNow.AddHours(1)",
				"CreatedAt = DateTime.UtcNow",
			) + ";",
		},
		{
			name:  "fee_initializer_stops_at_first_brace",
			set:   "entity-construction",
			input: "var f = new Fee\n{\n    Id = 1\n};\nvar g = new { A = 1 };",
			want: "var f = " + initializer("Fee",
				"FeeId = Guid.NewGuid()",
				"StudentId = Guid.NewGuid()",
				"Amount = 100.00m",
				"FeeType = FeeType.Tuition",
				`Description = "Test Fee"`,
				"DueDate = DateTime.UtcNow.AddDays(30)",
				"CreatedAt = DateTime.UtcNow",
			) + ";\nvar g = new { A = 1 };",
		},
		{
			name:  "external_user_info_keeps_name",
			set:   "entity-construction",
			input: `var info = new ExternalUserInfo { Name = "Bob", Picture = url };`,
			want:  `var info = new ExternalUserInfo { Id = "test-id", Email = "test@example.com", Name = "Bob", Provider = AuthProvider.Google };`,
		},
		{
			name:  "adds_moq_using",
			set:   "moq-using",
			input: "public class T { Mock<IRepo> r; }",
			want:  "using Moq;\npublic class T { Mock<IRepo> r; }",
		},
		{
			name:  "keeps_existing_moq_using",
			set:   "moq-using",
			input: "using Moq;\npublic class T { Mock<IRepo> r; }",
			want:  "using Moq;\npublic class T { Mock<IRepo> r; }",
		},
		{
			name:  "no_mocks_no_using",
			set:   "moq-using",
			input: "public class T { }",
			want:  "public class T { }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ruleSet(t, tt.set)
			path := tt.path
			if path == "" {
				path = "tests/Api/SomeTests.cs"
			}

			got := tt.input
			if s.AppliesTo(path) {
				got, _ = s.Apply(tt.input)
			}
			assert.Equal(t, tt.want, got)

			assert.NoError(t, text.CheckIdempotent(tt.input, s), "rule set should be idempotent")
		})
	}
}

const fixture = `using NUnit.Framework;

public class UserControllerTests
{
    private Mock<IUserRepository> _repo;

    [Test]
    public async Task Works()
    {
        var user = new User { Id = Guid.NewGuid(), Name = "x" };
        user.Id = Guid.NewGuid();
        user.Name = "changed";
        user.Role = request.Role?.Value;
        _repo.Setup(x => x.GetAsync(It.IsAny<Guid>(), It.IsAny<CancellationToken>() => default)).Returns(Task.FromResult(user));
        _repo.Setup(x => x.GetByActionAsync("Login", 1, 10)).ReturnsAsync(logs);
        await _service.LogoutAsync(token);
        await _repo.DeleteOlderThanAsync(DateTime.UtcNow.AddDays(-30));
        var fee = new Fee
        {
            Id = Guid.NewGuid()
        };
        var result = await _controller.Get(user.UserId);
        var okResult = (OkObjectResult)result;
        Assert.That(result, Is.TypeOf<OkObjectResult>());
    }
}
`

func TestDotnetTests_Idempotent(t *testing.T) {
	sets := DotnetTestsRuleSets()

	require.NoError(t, text.CheckIdempotent(fixture, sets...), "whole catalog should be idempotent")
	for _, s := range sets {
		t.Run(s.Name, func(t *testing.T) {
			assert.NoError(t, text.CheckIdempotent(fixture, s))
		})
	}

	out := text.Fold(fixture, sets...)
	assert.True(t, strings.HasPrefix(out, "using Moq;\n"))
	assert.Contains(t, out, "// user.Id = Guid.NewGuid(); // read-only")
	assert.Contains(t, out, ".ReturnsAsync(user);")
	assert.Contains(t, out, `GetByActionAsync("Login", It.IsAny<CancellationToken>())).ReturnsAsync(logs);`)
	assert.Contains(t, out, "DeleteOlderThanAsync(TimeSpan.FromDays(30))")
	assert.Contains(t, out, "FeeId = Guid.NewGuid()")
	assert.Contains(t, out, "var okResult = result.Result as OkObjectResult;")
}

func TestDotnetTests_Valid(t *testing.T) {
	sets, err := Lookup(DotnetTests)
	require.NoError(t, err)
	require.Len(t, sets, 11)

	var names []string
	for _, s := range sets {
		require.NoError(t, s.Validate())
		assert.NotEmpty(t, s.Description, "every set documents its ordering")
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"helper-cleanup",
		"readonly-properties",
		"method-signatures",
		"type-conversions",
		"mock-setups",
		"controller-results",
		"dto-construction",
		"entity-construction",
		"service-dependencies",
		"authorization-handler",
		"moq-using",
	}, names)

	_, err = campaign.New(sets, []string{"x.cs"}, campaign.Options{})
	assert.NoError(t, err, "rule ids should be unique across the catalog")

	_, err = Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownCatalog)
	assert.Equal(t, []string{DotnetTestHelpers, DotnetTests}, Names())
}

const testClass = `using NUnit.Framework;

namespace EduShield.Api.Tests
{
    public class UserServiceTests : BaseTests
    {
        [Test]
        public void Works()
        {
            Assert.Pass();
        }
    }
}
`

func TestDotnetTestHelpers(t *testing.T) {
	sets, err := Lookup(DotnetTestHelpers)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	require.NoError(t, sets[0].Validate())

	withHelpers := text.Fold(testClass, sets...)
	require.NotEqual(t, testClass, withHelpers)
	assert.Contains(t, withHelpers, "            Assert.Pass();\n        }\n\n        private static User CreateUser(", "helpers follow the last member")
	assert.Contains(t, withHelpers, "            return new Performance(studentId, facultyId, subject, score);\n        }\n    }\n}\n", "helpers stay inside the class")
	assert.NoError(t, text.CheckIdempotent(testClass, sets...))

	cleanup := ruleSet(t, "helper-cleanup")
	assert.Equal(t, testClass, text.Fold(withHelpers, cleanup), "helper-cleanup removes exactly what was added")
	assert.NoError(t, text.CheckIdempotent(withHelpers, cleanup))

	noClass := "public class Helpers\n{\n}\n"
	assert.Equal(t, noClass, text.Fold(noClass, sets...), "only test classes get helpers")
}
