package domain_test

import (
	"errors"
	"testing"

	"github.com/soufianesys/mlsys/pkg/domain"
)

func TestParseEnvironment(t *testing.T) {
	t.Run("it accepts the known environments", func(t *testing.T) {
		for _, name := range []string{"dev", "staging", "prod"} {
			env, err := domain.ParseEnvironment(name)
			if err != nil {
				t.Fatalf("unexpected error for %s: %s", name, err)
			}
			if string(env) != name {
				t.Errorf("unmatch: actual = %s, expected = %s", env, name)
			}
		}
	})

	t.Run("it rejects anything else", func(t *testing.T) {
		for _, name := range []string{"", "production", "Dev", "dev ", "test"} {
			if _, err := domain.ParseEnvironment(name); !errors.Is(err, domain.ErrUnknownEnvironment) {
				t.Errorf("expected ErrUnknownEnvironment for %q, got %v", name, err)
			}
		}
	})
}

func TestParseArtifactPath(t *testing.T) {
	type then struct {
		path domain.ArtifactPath
		err  error
	}

	for name, testcase := range map[string]struct {
		when string
		then then
	}{
		"a well-formed key is parsed into its parts": {
			when: "churn/v3/model.pkl",
			then: then{path: domain.ArtifactPath{
				ModelName: "churn", Version: 3, Filename: "model.pkl",
			}},
		},
		"a sidecar key is parsed like any other": {
			when: "churn/v3/metadata.json",
			then: then{path: domain.ArtifactPath{
				ModelName: "churn", Version: 3, Filename: "metadata.json",
			}},
		},
		"a version with leading zeroes keeps its numeric value": {
			when: "churn/v007/model.bin",
			then: then{path: domain.ArtifactPath{
				ModelName: "churn", Version: 7, Filename: "model.bin",
			}},
		},
		"too few segments are rejected": {
			when: "churn/model.pkl",
			then: then{err: domain.ErrInvalidPath},
		},
		"too many segments are rejected": {
			when: "churn/v3/nested/model.pkl",
			then: then{err: domain.ErrInvalidPath},
		},
		"a version segment without the v prefix is rejected": {
			when: "churn/3/model.pkl",
			then: then{err: domain.ErrInvalidPath},
		},
		"a non-numeric version is rejected": {
			when: "churn/vNext/model.pkl",
			then: then{err: domain.ErrInvalidPath},
		},
		"an empty model name is rejected": {
			when: "/v3/model.pkl",
			then: then{err: domain.ErrInvalidPath},
		},
		"an empty filename is rejected": {
			when: "churn/v3/",
			then: then{err: domain.ErrInvalidPath},
		},
		"an empty key is rejected": {
			when: "",
			then: then{err: domain.ErrInvalidPath},
		},
	} {
		t.Run(name, func(t *testing.T) {
			actual, err := domain.ParseArtifactPath(testcase.when)
			if testcase.then.err != nil {
				if !errors.Is(err, testcase.then.err) {
					t.Fatalf("expected error %v, got %v", testcase.then.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if actual != testcase.then.path {
				t.Errorf("unmatch: actual = %+v, expected = %+v", actual, testcase.then.path)
			}
		})
	}
}

func TestArtifactPath_Keys(t *testing.T) {
	p := domain.ArtifactPath{ModelName: "churn", Version: 3, Filename: "model.json"}

	if p.Key() != "churn/v3/model.json" {
		t.Errorf("unmatch Key: %s", p.Key())
	}
	if p.SidecarKey() != "churn/v3/metadata.json" {
		t.Errorf("unmatch SidecarKey: %s", p.SidecarKey())
	}
	if p.IsSidecar() {
		t.Errorf("model.json should not be a sidecar")
	}

	sc := domain.ArtifactPath{ModelName: "churn", Version: 3, Filename: "metadata.json"}
	if !sc.IsSidecar() {
		t.Errorf("metadata.json should be a sidecar")
	}
}

func TestValidModelVersion(t *testing.T) {
	for v, expected := range map[string]bool{
		"v1":    true,
		"v42":   true,
		"v007":  true,
		"1":     false,
		"v":     false,
		"v1.2":  false,
		"V1":    false,
		"v1 ":   false,
		"":      false,
		"vlast": false,
	} {
		if actual := domain.ValidModelVersion(v); actual != expected {
			t.Errorf("unmatch for %q: actual = %v, expected = %v", v, actual, expected)
		}
	}
}
