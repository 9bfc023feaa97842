package domain

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNatJSONKeepsPrecisionAbove2To53(t *testing.T) {
	big := MustParseNat("9007199254740993")

	data, err := json.Marshal(CartLine{ProductID: big, Quantity: NewNat(2)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"productId":"9007199254740993","quantity":"2"}`, string(data))

	var line CartLine
	require.NoError(t, json.Unmarshal(data, &line))
	assert.True(t, line.ProductID.Equal(big))
	assert.Equal(t, "2", line.Quantity.String())
}

func TestNatUnmarshalAcceptsBareIntegers(t *testing.T) {
	var line CartLine
	require.NoError(t, json.Unmarshal([]byte(`{"productId":7,"quantity":3}`), &line))
	assert.Equal(t, "7", line.ProductID.String())
	assert.Equal(t, "3", line.Quantity.String())
}

func TestNatUnmarshalRejectsNonNaturals(t *testing.T) {
	for _, raw := range []string{`"-1"`, `1.5`, `"1e3"`, `""`, `null`, `"abc"`} {
		var n Nat
		assert.Error(t, json.Unmarshal([]byte(raw), &n), raw)
	}
}

func TestNatArithmetic(t *testing.T) {
	a := NewNat(5)
	b := NewNat(3)

	assert.Equal(t, "8", a.Add(b).String())
	assert.Equal(t, "15", a.Mul(b).String())
	assert.Equal(t, "2", a.Sub(b).String())
	assert.True(t, b.Sub(a).IsZero())
	assert.Equal(t, "3", a.Min(b).String())
	assert.True(t, Nat{}.IsZero())
	assert.Equal(t, "5", a.String(), "operands must not be mutated")
}

func TestOptionUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Option[UserProfile]
	}{
		{name: "null", raw: `null`, want: None[UserProfile]()},
		{name: "tagged none", raw: `{"__kind__":"None"}`, want: None[UserProfile]()},
		{name: "tagged some", raw: `{"__kind__":"Some","value":{"name":"Jane"}}`, want: Some(UserProfile{Name: "Jane"})},
		{name: "bare", raw: `{"name":"Jane","email":"jane@x.com"}`, want: Some(UserProfile{Name: "Jane", Email: "jane@x.com"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Option[UserProfile]
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionMatch(t *testing.T) {
	some := Match(Some(2), func(v int) string { return "some" }, func() string { return "none" })
	none := Match(None[int](), func(v int) string { return "some" }, func() string { return "none" })

	assert.Equal(t, "some", some)
	assert.Equal(t, "none", none)
	assert.Equal(t, 4, None[int]().OrElse(4))
}

func TestPlacementStateTransitions(t *testing.T) {
	assert.True(t, PlacementIdle.CanTransitionTo(PlacementValidating))
	assert.True(t, PlacementValidating.CanTransitionTo(PlacementInvalid))
	assert.True(t, PlacementValidating.CanTransitionTo(PlacementSubmitting))
	assert.True(t, PlacementSubmitting.CanTransitionTo(PlacementConfirmed))
	assert.True(t, PlacementSubmitting.CanTransitionTo(PlacementFailed))

	assert.False(t, PlacementIdle.CanTransitionTo(PlacementSubmitting))
	assert.False(t, PlacementInvalid.CanTransitionTo(PlacementSubmitting))
	assert.False(t, PlacementConfirmed.CanTransitionTo(PlacementSubmitting))
	assert.False(t, PlacementState("BOGUS").IsValid())
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	assert.True(t, PrincipalFromContext(ctx).IsNone())

	ctx = ContextWithPrincipal(ctx, Principal("token-abc"))
	p, ok := PrincipalFromContext(ctx).Get()
	require.True(t, ok)
	assert.Equal(t, Principal("token-abc"), p)

	assert.Len(t, p.Fingerprint(), 16)
	assert.NotContains(t, p.Fingerprint(), "token")
	assert.Equal(t, "anonymous", Principal("").Fingerprint())
}
