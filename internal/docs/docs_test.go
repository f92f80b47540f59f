package docs

import (
	"reflect"
	"strings"
	"testing"
)

func TestTopics(t *testing.T) {
	want := []string{"chapters", "dragging", "hierarchy", "storage"}
	if got := Topics(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Topics() = %v; want %v", got, want)
	}
}

func TestGet(t *testing.T) {
	body, ok := Get(" Hierarchy ")
	if !ok || !strings.HasPrefix(body, "# Hierarchy") {
		t.Fatalf("Get(hierarchy) = %q, %v", body, ok)
	}
	for _, bad := range []string{"", "nope", "../docs", `content\hierarchy`} {
		if _, ok := Get(bad); ok {
			t.Fatalf("Get(%q) should fail", bad)
		}
	}
}
