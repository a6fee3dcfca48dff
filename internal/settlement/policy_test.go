package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyIsValid(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())
	assert.Equal(t, int64(40000), p.FixedShare)
	assert.Len(t, p.SharedSubcategories, 6)
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Policy)
		want   string
	}{
		{"negative fixed share", func(p *Policy) { p.FixedShare = -1 }, "fixed share"},
		{"empty label", func(p *Policy) { p.FullReimburseLabel = " " }, "full reimbursement label"},
		{"empty marker", func(p *Policy) { p.ExclusionMarker = "" }, "exclusion marker"},
		{"empty shared name", func(p *Policy) { p.SharedSubcategories = append(p.SharedSubcategories, "") }, "empty name"},
		{"label also shared", func(p *Policy) { p.SharedSubcategories = append(p.SharedSubcategories, p.FullReimburseLabel) }, "both shared"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			err := p.Validate()
			require.ErrorIs(t, err, ErrInvalidPolicy)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPolicyValidateCollectsAll(t *testing.T) {
	err := Policy{FixedShare: -5}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fixed share")
	assert.Contains(t, err.Error(), "full reimbursement label")
	assert.Contains(t, err.Error(), "exclusion marker")
}

func TestClassify(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, classShared, p.classify("食費"))
	assert.Equal(t, classFull, p.classify("立替（全額）"))
	assert.Equal(t, classIgnored, p.classify("食費（自費）"))
	assert.Equal(t, classIgnored, p.classify("自費"))
	assert.Equal(t, classIgnored, p.classify("趣味"))
	assert.Equal(t, classIgnored, p.classify(""))
}
