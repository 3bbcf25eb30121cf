package cfg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type collectingVisitor struct {
	seen []Kind
}

func (v *collectingVisitor) VisitBasic(idx Index, b *Block) { v.seen = append(v.seen, KindBasic) }
func (v *collectingVisitor) VisitIf(idx Index, b *Block)    { v.seen = append(v.seen, KindIf) }
func (v *collectingVisitor) VisitWhile(idx Index, b *Block) { v.seen = append(v.seen, KindWhile) }

func TestArenaAllocatesDistinctIndices(t *testing.T) {
	a := NewArena()
	i1 := a.New(KindBasic)
	i2 := a.New(KindIf)
	require.NotEqual(t, i1, i2)
	require.Equal(t, 2, a.Len())
	require.Equal(t, KindIf, a.Get(i2).Kind)
}

func TestNewBlockSuccessorsDefaultToNoBlock(t *testing.T) {
	a := NewArena()
	idx := a.New(KindIf)
	b := a.Get(idx)
	require.Equal(t, NoBlock, b.Next)
	require.Equal(t, NoBlock, b.ThenBranch)
	require.Equal(t, NoBlock, b.ElseBranch)
	require.Equal(t, NoBlock, b.Body)
}

func TestWalkFollowsNextAndDispatchesByKind(t *testing.T) {
	a := NewArena()
	start := a.New(KindBasic)
	ifIdx := a.New(KindIf)
	merge := a.New(KindBasic)
	a.Get(start).Next = ifIdx
	a.Get(ifIdx).Next = merge

	v := &collectingVisitor{}
	Walk(a, start, v)

	require.Equal(t, []Kind{KindBasic, KindIf, KindBasic}, v.seen)
}

func TestAppendAccumulatesInstructions(t *testing.T) {
	a := NewArena()
	idx := a.New(KindBasic)
	b := a.Get(idx)
	b.Append(Instr{Op: "literal_int", Args: []string{"1", "__int_1"}})
	b.Append(Instr{Op: "return_int", Args: []string{"__int_1"}})
	require.Len(t, b.Instructions, 2)
}
