package transformer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whit3rabbit/luamixer/internal/generator"
	"github.com/whit3rabbit/luamixer/internal/luaast"
	"github.com/whit3rabbit/luamixer/internal/parser"
)

// evalConst reduces the arithmetic expressions the encoder emits back to a
// number, so tests can check value preservation without a Lua runtime.
func evalConst(t *testing.T, e luaast.Expr) float64 {
	t.Helper()
	switch n := e.(type) {
	case *luaast.NumericLiteral:
		return n.Value
	case *luaast.ParenExpression:
		return evalConst(t, n.Inner)
	case *luaast.UnaryExpression:
		require.Equal(t, "-", n.Operator)
		return -evalConst(t, n.Operand)
	case *luaast.BinaryExpression:
		l, r := evalConst(t, n.Left), evalConst(t, n.Right)
		switch n.Operator {
		case "+":
			return l + r
		case "-":
			return l - r
		case "*":
			return l * r
		case "/":
			return l / r
		}
	}
	t.Fatalf("unexpected expression kind %T", e)
	return 0
}

func TestNumberEncoderPreservesValues(t *testing.T) {
	values := []float64{5, 42, 1000, 123456, 3.14, 0.5, 99.25}
	chunk := &luaast.Chunk{}
	for _, v := range values {
		chunk.Body = append(chunk.Body, &luaast.LocalStatement{
			Names: []*luaast.Identifier{{Name: "n"}},
			Init:  []luaast.Expr{floatLiteral(v)},
		})
	}

	enc := NewNumberEncoder(100, rand.New(rand.NewSource(5)))
	n := enc.Encode(chunk)
	assert.Equal(t, len(values), n)

	for i, v := range values {
		init := chunk.Body[i].(*luaast.LocalStatement).Init[0]
		_, plain := init.(*luaast.NumericLiteral)
		assert.False(t, plain, "value %v was not transformed", v)
		assert.Equal(t, v, evalConst(t, init), "value %v not preserved", v)
	}

	out, err := generator.Generate(chunk)
	require.NoError(t, err)
	_, err = parser.Parse(out)
	assert.NoError(t, err)
}

func TestNumberEncoderExemptsSmallIntegers(t *testing.T) {
	chunk, err := parser.Parse(`local a, b, c, d = 0, 1, 2, 3`)
	require.NoError(t, err)

	enc := NewNumberEncoder(100, rand.New(rand.NewSource(2)))
	n := enc.Encode(chunk)

	assert.Zero(t, n)
	out, err := generator.Generate(chunk)
	require.NoError(t, err)
	assert.Equal(t, "local a, b, c, d = 0, 1, 2, 3", out)
}

func TestNumberEncoderLevelZeroIsNoop(t *testing.T) {
	chunk, err := parser.Parse(`local x = 12345`)
	require.NoError(t, err)

	enc := NewNumberEncoder(0, rand.New(rand.NewSource(2)))
	assert.Zero(t, enc.Encode(chunk))
}

func TestNumberEncoderProbabilityScalesWithLevel(t *testing.T) {
	build := func() *luaast.Chunk {
		chunk := &luaast.Chunk{}
		for i := 0; i < 200; i++ {
			chunk.Body = append(chunk.Body, &luaast.LocalStatement{
				Names: []*luaast.Identifier{{Name: "n"}},
				Init:  []luaast.Expr{intLiteral(int64(i + 10))},
			})
		}
		return chunk
	}

	low := NewNumberEncoder(20, rand.New(rand.NewSource(11)))
	high := NewNumberEncoder(90, rand.New(rand.NewSource(11)))
	nLow := low.Encode(build())
	nHigh := high.Encode(build())

	assert.Greater(t, nHigh, nLow)
	assert.Less(t, nLow, 100)
	assert.Greater(t, nHigh, 100)
}

func TestNumberEncoderDecimalStaysExact(t *testing.T) {
	// Run the decimal several times across strategies; every disguise must
	// reduce back to exactly the original float.
	for seed := int64(0); seed < 20; seed++ {
		enc := NewNumberEncoder(100, rand.New(rand.NewSource(seed)))
		chunk := &luaast.Chunk{Body: []luaast.Stmt{&luaast.LocalStatement{
			Names: []*luaast.Identifier{{Name: "f"}},
			Init:  []luaast.Expr{floatLiteral(2.75)},
		}}}
		enc.Encode(chunk)
		init := chunk.Body[0].(*luaast.LocalStatement).Init[0]
		assert.Equal(t, 2.75, evalConst(t, init), "seed %d", seed)
	}
}
