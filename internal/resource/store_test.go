package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreOperations(t *testing.T) {
	s := NewStore(func(i item) int { return i.ID })
	assert.Equal(t, uint64(0), s.Version())

	s.Replace([]item{{ID: 1, Nome: "A"}, {ID: 2, Nome: "B"}})
	s.Append(item{ID: 3, Nome: "C"})
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, uint64(2), s.Version())

	ok := s.Patch(2, func(i item) item { i.Nome = "B2"; return i })
	require.True(t, ok)
	items := s.Items()
	assert.Equal(t, "B2", items[1].Nome)

	assert.False(t, s.Patch(42, func(i item) item { return i }))
	assert.False(t, s.Remove(42))
	assert.True(t, s.Remove(1))

	_, found := s.Find(1)
	assert.False(t, found)
	got, found := s.Find(3)
	require.True(t, found)
	assert.Equal(t, "C", got.Nome)
}

func TestStoreItemsIsACopy(t *testing.T) {
	s := NewStore(func(i item) int { return i.ID })
	s.Replace([]item{{ID: 1, Nome: "A"}})

	items := s.Items()
	items[0].Nome = "mutado"
	got, _ := s.Find(1)
	assert.Equal(t, "A", got.Nome)
}

func TestFilter(t *testing.T) {
	items := []item{{ID: 1, Nome: "Buraco na rua"}, {ID: 2, Nome: "Poste apagado"}, {ID: 3, Nome: "buraco calçada"}}
	fields := func(i item) []string { return []string{i.Nome} }

	assert.Len(t, Filter(items, "   ", fields), 3)
	got := Filter(items, "BURACO", fields)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 3, got[1].ID)
	assert.Len(t, Filter(items, "calcada", fields), 1)
	assert.Empty(t, Filter(items, "árvore", fields))
}

func TestSortedIsStableAndSideEffectFree(t *testing.T) {
	items := []item{{ID: 2, Nome: "b"}, {ID: 1, Nome: "a"}, {ID: 2, Nome: "c"}}
	sorted := Sorted(items, func(a, b item) bool { return a.ID < b.ID })

	assert.Equal(t, []string{"a", "b", "c"}, []string{sorted[0].Nome, sorted[1].Nome, sorted[2].Nome})
	assert.Equal(t, "b", items[0].Nome)
}

func TestLoadAllCommitsOnlyWhenEverythingSucceeds(t *testing.T) {
	okA := newTestManager(&fakeRemote{items: []item{{ID: 1, Nome: "A"}}})
	okB := newTestManager(&fakeRemote{items: []item{{ID: 2, Nome: "B"}}})
	broken := newTestManager(&fakeRemote{listErr: errors.New("ocorrencias indisponível")})

	err := LoadAll(context.Background(), okA, broken, okB)
	require.Error(t, err)
	assert.Empty(t, okA.Items())
	assert.Empty(t, okB.Items())

	require.NoError(t, LoadAll(context.Background(), okA, okB))
	assert.Len(t, okA.Items(), 1)
	assert.Len(t, okB.Items(), 1)
	assert.True(t, okA.State().Loaded)
}

func TestMessage(t *testing.T) {
	assert.Empty(t, Message(nil, "x"))
	assert.Empty(t, Message(context.Canceled, "x"))
	assert.Equal(t, "Informe o nome.", Message(Invalid("nome", "Informe o nome."), "x"))
	assert.Equal(t, "detalhe", Message(userErr{msg: "detalhe"}, "x"))
	assert.Equal(t, "x", Message(userErr{msg: " "}, "x"))
	assert.Equal(t, "x", Message(errors.New("boom"), "x"))
}

func TestFormBindIgnoresUnknownFields(t *testing.T) {
	f := NewForm(itemFields)
	f.Bind(map[string][]string{"nome": {"Ana"}, "csrf": {"tok"}})
	assert.Equal(t, "Ana", f.Get("nome"))
	assert.False(t, f.Has("csrf"))

	clone := f.Clone()
	require.NoError(t, clone.Set("nome", "Bia"))
	assert.Equal(t, "Ana", f.Get("nome"))
}
