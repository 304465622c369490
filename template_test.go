package txscope_test

import (
	"testing"

	"github.com/aretw0/txscope"
	"github.com/aretw0/txscope/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewTemplate_DefaultPreset(t *testing.T) {
	tpl := txscope.NewTemplate("default")

	assert.Equal(t, "default", tpl.Name)
	assert.Equal(t, domain.DefaultSessionOptions(), tpl.Options)
	assert.False(t, tpl.Options.ReadOnly())
}

func TestNewTemplate_ExplicitOptions(t *testing.T) {
	tpl := txscope.NewTemplate("analytics", txscope.WithSessionOptions(domain.ReadOnlySessionOptions()))

	assert.Equal(t, domain.ReadOnlySessionOptions(), tpl.Options)
	assert.True(t, tpl.Options.ReadOnly())
	assert.Equal(t, domain.ReadPreferenceNearest, tpl.Options.ReadPreference)
}

func TestSessionOptions_TxOptionsSubset(t *testing.T) {
	opts := domain.DefaultSessionOptions()
	tx := opts.TxOptions()

	assert.Equal(t, opts.ReadConcern, tx.ReadConcern)
	assert.Equal(t, opts.ReadPreference, tx.ReadPreference)
	assert.Equal(t, opts.WriteConcern, tx.WriteConcern)
	assert.Equal(t, opts.MaxOpTime, tx.MaxCommitTime)
}
