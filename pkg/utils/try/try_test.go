package try_test

import (
	"errors"
	"testing"

	"github.com/soufianesys/mlsys/pkg/utils/try"
)

type fataler struct {
	fatal [][]any
}

func (f *fataler) Fatal(args ...any) {
	f.fatal = append(f.fatal, args)
}

type helperfataler struct {
	fataler

	helper uint
}

func (hf *helperfataler) Helper() {
	hf.helper += 1
}

func TestTry(t *testing.T) {
	t.Run("when it does not have error,", func(t *testing.T) {
		testee := try.To(42, nil)

		t.Run("Get returns the value", func(t *testing.T) {
			value, err := testee.Get()
			if value != 42 || err != nil {
				t.Errorf("unmatch: (%d, %v)", value, err)
			}
		})

		t.Run("OrDefault returns the value", func(t *testing.T) {
			if value := testee.OrDefault(0); value != 42 {
				t.Errorf("unmatch: %d", value)
			}
		})

		t.Run("OrFatal returns the value and does not call Fatal", func(t *testing.T) {
			ftl := &fataler{}
			if value := testee.OrFatal(ftl); value != 42 {
				t.Errorf("unmatch: %d", value)
			}
			if len(ftl.fatal) != 0 {
				t.Errorf("Fatal should not be called: %v", ftl.fatal)
			}
		})
	})

	t.Run("when it has error,", func(t *testing.T) {
		expectedErr := errors.New("fake error")
		testee := try.To(42, expectedErr)

		t.Run("Get returns the error", func(t *testing.T) {
			value, err := testee.Get()
			if value != 0 || !errors.Is(err, expectedErr) {
				t.Errorf("unmatch: (%d, %v)", value, err)
			}
		})

		t.Run("OrDefault returns the default", func(t *testing.T) {
			if value := testee.OrDefault(-1); value != -1 {
				t.Errorf("unmatch: %d", value)
			}
		})

		t.Run("OrFatal calls Fatal with the error", func(t *testing.T) {
			ftl := &fataler{}
			testee.OrFatal(ftl)
			if len(ftl.fatal) != 1 {
				t.Fatalf("Fatal should be called once: %v", ftl.fatal)
			}
		})

		t.Run("OrFatal marks the caller as helper when it can", func(t *testing.T) {
			ftl := &helperfataler{}
			testee.OrFatal(ftl)
			if ftl.helper == 0 {
				t.Errorf("Helper should be called")
			}
			if len(ftl.fatal) != 1 {
				t.Errorf("Fatal should be called once: %v", ftl.fatal)
			}
		})
	})
}
