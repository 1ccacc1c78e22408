package templating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"apitest/internal/httpclient"
)

func sampleResponses() map[string]*httpclient.Response {
	return map[string]*httpclient.Response{
		"login": {
			StatusCode: 201,
			Header:     httpclient.NewHeader("X-Request-Id", "req-9", "Content-Type", "application/json"),
			Body:       []byte(`{"token":"tok-1","user":{"id":17,"name":"ada"},"tags":["a","b"]}`),
			Duration:   5 * time.Millisecond,
		},
	}
}

func TestResolveVariables(t *testing.T) {
	vars := map[string]string{"host": "api.example.com", "id": "42"}

	assert.Equal(t,
		"https://api.example.com/users/42",
		Resolve("https://{{host}}/users/{{id}}", vars, nil))

	// Unknown names stay verbatim.
	assert.Equal(t, "x {{missing}} y", Resolve("x {{missing}} y", vars, nil))
	assert.Equal(t, "no placeholders", Resolve("no placeholders", vars, nil))
	assert.Equal(t, "", Resolve("", vars, nil))
	assert.Equal(t, "{{}}", Resolve("{{}}", vars, nil))
}

func TestResolveResponseReferences(t *testing.T) {
	responses := sampleResponses()

	assert.Equal(t, "201", Resolve("{{login.status}}", nil, responses))
	assert.Equal(t, "tok-1", Resolve("{{login.body.token}}", nil, responses))
	assert.Equal(t, "17", Resolve("{{login.body.user.id}}", nil, responses))
	assert.Equal(t, "b", Resolve("{{login.body.tags.1}}", nil, responses))
	assert.Equal(t, "req-9", Resolve("{{login.headers.X-Request-Id}}", nil, responses))
	assert.Contains(t, Resolve("{{login.body}}", nil, responses), `"token":"tok-1"`)

	assert.Equal(t, "Bearer tok-1", Resolve("Bearer {{login.body.token}}", nil, responses))

	// Unknown item, unknown path, unknown header: all verbatim.
	assert.Equal(t, "{{logout.status}}", Resolve("{{logout.status}}", nil, responses))
	assert.Equal(t, "{{login.body.nope}}", Resolve("{{login.body.nope}}", nil, responses))
	assert.Equal(t, "{{login.headers.Nope}}", Resolve("{{login.headers.Nope}}", nil, responses))
}

func TestVariablesShadowResponseNames(t *testing.T) {
	vars := map[string]string{"login.status": "from-vars"}
	assert.Equal(t, "from-vars", Resolve("{{login.status}}", vars, sampleResponses()))
}

func TestResolveMap(t *testing.T) {
	vars := map[string]string{"v": "1"}
	out := ResolveMap(map[string]string{"a": "{{v}}", "b": "static"}, vars, nil)
	assert.Equal(t, map[string]string{"a": "1", "b": "static"}, out)
	assert.Empty(t, ResolveMap(nil, vars, nil))
}
