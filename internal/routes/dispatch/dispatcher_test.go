package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                     "/",
		"/":                    "/",
		"/foo/":                "/foo",
		"foo":                  "/foo",
		"/api/demo/sum":        "/api/demo/sum",
		"/api/demo/sum/":       "/api/demo/sum",
		"/api/api/demo/sum":    "/api/demo/sum",
		"/hello-world/home":    "/hello-world/home",
		"/hello-world/home///": "/hello-world/home//",
	}
	for in, want := range cases {
		assert.Equal(t, want, CanonicalPath(in), "input %q", in)
	}
}
