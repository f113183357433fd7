package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddVariantLaterAdditionWinsTies(t *testing.T) {
	g := &Generic{Name: "f"}
	first := &Concrete{Name: "f", Arity: 1, General: true}
	second := &Concrete{Name: "f", Arity: 1, General: true}
	g.AddVariant(first)
	g.AddVariant(second)
	require.Same(t, second, g.Variants[0])
}

func TestAddVariantKeepsArityDescendingOrder(t *testing.T) {
	g := &Generic{Name: "f"}
	one := &Concrete{Name: "f", Arity: 1, General: true}
	two := &Concrete{Name: "f", Arity: 2, General: true}
	g.AddVariant(one)
	g.AddVariant(two)
	require.Same(t, two, g.Variants[0])
	require.Same(t, one, g.Variants[1])
}

func TestAddVariantPutsStrictBeforeGeneral(t *testing.T) {
	g := &Generic{Name: "f"}
	general := &Concrete{Name: "f", Arity: 1, General: true}
	strict := &Concrete{Name: "f", Arity: 1, General: false}
	g.AddVariant(general)
	g.AddVariant(strict)
	require.Same(t, strict, g.Variants[0])
	require.Same(t, general, g.Variants[1])
}
