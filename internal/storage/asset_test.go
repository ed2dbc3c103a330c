package storage

import (
	"fmt"
	"testing"

	"github.com/pixil98/go-testutil"
)

// testSpec is a simple ValidatingSpec for testing
type testSpec struct {
	valid bool
}

func (s *testSpec) Validate() error {
	if !s.valid {
		return fmt.Errorf("spec is invalid")
	}
	return nil
}

func TestAsset_Validate(t *testing.T) {
	tests := map[string]struct {
		asset   Asset[*testSpec]
		expErrs []string
	}{
		"valid asset": {
			asset: Asset[*testSpec]{Version: 1, Identifier: "zombie-basic", Spec: &testSpec{valid: true}},
		},
		"version not set": {
			asset:   Asset[*testSpec]{Version: 0, Identifier: "zombie-basic", Spec: &testSpec{valid: true}},
			expErrs: []string{"version must be set"},
		},
		"empty identifier": {
			asset:   Asset[*testSpec]{Version: 1, Spec: &testSpec{valid: true}},
			expErrs: []string{"id must be set"},
		},
		"identifier with spaces": {
			asset:   Asset[*testSpec]{Version: 1, Identifier: "zombie basic", Spec: &testSpec{valid: true}},
			expErrs: []string{"id must be alphanumeric"},
		},
		"identifier with underscore": {
			asset:   Asset[*testSpec]{Version: 1, Identifier: "zombie_basic", Spec: &testSpec{valid: true}},
			expErrs: []string{"id must be alphanumeric"},
		},
		"missing spec": {
			asset:   Asset[*testSpec]{Version: 1, Identifier: "arena"},
			expErrs: []string{"spec must be set"},
		},
		"invalid spec": {
			asset:   Asset[*testSpec]{Version: 1, Identifier: "arena", Spec: &testSpec{valid: false}},
			expErrs: []string{"spec is invalid"},
		},
		"multiple errors": {
			asset: Asset[*testSpec]{Spec: &testSpec{valid: false}},
			expErrs: []string{
				"version must be set",
				"id must be set",
				"spec is invalid",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.asset.Validate()

			if len(tt.expErrs) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			testutil.AssertErrorContains(t, err, tt.expErrs...)
		})
	}
}
