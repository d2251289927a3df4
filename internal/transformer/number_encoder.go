package transformer

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/whit3rabbit/luamixer/internal/luaast"
)

// NumberEncoder rewrites numeric literals into arithmetic expressions that
// evaluate to the same value. Each candidate literal is transformed with
// probability level/100, so higher protection levels disguise more numbers.
type NumberEncoder struct {
	level int
	rng   *rand.Rand
	count int
}

// NewNumberEncoder returns an encoder applying transformations with
// probability level/100.
func NewNumberEncoder(level int, rng *rand.Rand) *NumberEncoder {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	return &NumberEncoder{level: level, rng: rng}
}

// Count reports how many literals the last Encode call rewrote.
func (e *NumberEncoder) Count() int {
	return e.count
}

// Encode rewrites literals in place. Small integers 0 through 3 are exempt:
// they are too common as loop bounds and table indices for the disguise to
// be worth the size cost.
func (e *NumberEncoder) Encode(chunk *luaast.Chunk) int {
	e.count = 0
	luaast.RewriteExprs(chunk, func(expr luaast.Expr) luaast.Expr {
		lit, ok := expr.(*luaast.NumericLiteral)
		if !ok {
			return expr
		}
		v := lit.Value
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return expr
		}
		if v == math.Trunc(v) && v >= 0 && v <= 3 {
			return expr
		}
		if e.rng.Intn(100) >= e.level {
			return expr
		}
		out := e.disguise(v)
		if out == nil {
			return expr
		}
		e.count++
		return out
	})
	return e.count
}

func (e *NumberEncoder) disguise(v float64) luaast.Expr {
	isInt := v == math.Trunc(v) && math.Abs(v) < 1e15

	// Pick a preferred strategy at random but fall back to the others when
	// the pick cannot represent the value exactly. Decimals never get
	// split-add, which only works on integers.
	var strategies []func(float64) luaast.Expr
	if isInt {
		strategies = []func(float64) luaast.Expr{e.splitAdd, e.offsetSubtract, e.scaleDivide}
	} else {
		strategies = []func(float64) luaast.Expr{e.offsetSubtract, e.scaleDivide}
	}
	first := e.rng.Intn(len(strategies))
	for i := 0; i < len(strategies); i++ {
		if inner := strategies[(first+i)%len(strategies)](v); inner != nil {
			return &luaast.ParenExpression{Inner: inner}
		}
	}
	return nil
}

// splitAdd renders an integer n as a + b with a random split point.
func (e *NumberEncoder) splitAdd(v float64) luaast.Expr {
	n := int64(v)
	var a int64
	if n == 0 {
		a = int64(e.rng.Intn(1000)) + 1
	} else {
		a = e.rng.Int63n(abs64(n)) + 1
		if n < 0 {
			a = -a
		}
	}
	b := n - a
	return &luaast.BinaryExpression{
		Operator: "+",
		Left:     intLiteral(a),
		Right:    intLiteral(b),
	}
}

// offsetSubtract renders v as (v + k) - k with an integer k, which is exact
// for integers and for decimals whose magnitude stays well under 2^52.
func (e *NumberEncoder) offsetSubtract(v float64) luaast.Expr {
	if math.Abs(v) > 1e12 {
		return nil
	}
	k := float64(e.rng.Intn(9000) + 1000)
	shifted := v + k
	if shifted-k != v {
		return nil
	}
	return &luaast.BinaryExpression{
		Operator: "-",
		Left:     floatLiteral(shifted),
		Right:    floatLiteral(k),
	}
}

// scaleDivide renders v as (v * 2^p) / 2^p. Power-of-two scaling only moves
// the exponent, so the division recovers v exactly.
func (e *NumberEncoder) scaleDivide(v float64) luaast.Expr {
	p := 1 + e.rng.Intn(6)
	scale := float64(int64(1) << uint(p))
	scaled := v * scale
	if math.IsInf(scaled, 0) || scaled/scale != v {
		return nil
	}
	return &luaast.BinaryExpression{
		Operator: "/",
		Left:     floatLiteral(scaled),
		Right:    floatLiteral(scale),
	}
}

func intLiteral(n int64) luaast.Expr {
	if n < 0 {
		return &luaast.UnaryExpression{
			Operator: "-",
			Operand:  &luaast.NumericLiteral{Raw: strconv.FormatInt(-n, 10), Value: float64(-n)},
		}
	}
	return &luaast.NumericLiteral{Raw: strconv.FormatInt(n, 10), Value: float64(n)}
}

func floatLiteral(v float64) luaast.Expr {
	if v < 0 {
		neg := floatLiteral(-v)
		return &luaast.UnaryExpression{Operator: "-", Operand: neg}
	}
	raw := strconv.FormatFloat(v, 'f', -1, 64)
	return &luaast.NumericLiteral{Raw: raw, Value: v}
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
