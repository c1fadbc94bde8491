package source

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/feedradar/internal/domain"
	"github.com/kailas-cloud/feedradar/internal/domain/item"
)

func TestDefault_RegistersBuiltinKinds(t *testing.T) {
	r := Default(nil, zap.NewNop())
	for _, kind := range []item.Kind{item.KindRSS, item.KindReddit, item.KindHackerNews, item.KindGitHub} {
		if _, err := r.Resolve(kind); err != nil {
			t.Errorf("Resolve(%q): %v", kind, err)
		}
	}
}

func TestResolve_UnknownKind(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve(item.Kind("gopher"))
	if !errors.Is(err, domain.ErrUnknownSourceKind) {
		t.Fatalf("expected ErrUnknownSourceKind, got %v", err)
	}
	if !strings.Contains(err.Error(), "gopher") {
		t.Errorf("error should name the kind, got %q", err)
	}
}

func TestRegister_ReplacesBinding(t *testing.T) {
	r := NewRegistry()
	first := NewRSS(nil, zap.NewNop())
	second := NewRSS(nil, zap.NewNop())
	r.Register(item.KindRSS, first)
	r.Register(item.KindRSS, second)

	got, err := r.Resolve(item.KindRSS)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != second {
		t.Error("expected the later binding to win")
	}
}
