package transformer

import (
	"encoding/base64"
	"fmt"
	"math/rand"
	"sort"

	"github.com/whit3rabbit/luamixer/internal/config"
	"github.com/whit3rabbit/luamixer/internal/luaast"
	"github.com/whit3rabbit/luamixer/internal/parser"
)

// Decoder helper names before mangling. The helpers are prepended to the
// chunk as ordinary local functions, so a later mangling pass renames them
// together with the rest of the program.
const (
	xorDecoderName     = "__luamix_xor_decode"
	base64DecoderName  = "__luamix_b64_decode"
	huffmanDecoderName = "__luamix_huff_decode"
)

// Lua 5.1 has no bitwise operators, so the XOR decoder reconstructs the
// operation bit by bit with arithmetic.
const xorDecoderSource = `
local function __luamix_xor_decode(s, k)
	local out = {}
	for i = 1, #s do
		local a = string.byte(s, i)
		local b = string.byte(k, (i - 1) % #k + 1)
		local r = 0
		local p = 1
		while a > 0 or b > 0 do
			local x = a % 2
			local y = b % 2
			if x ~= y then
				r = r + p
			end
			a = (a - x) / 2
			b = (b - y) / 2
			p = p * 2
		end
		out[i] = string.char(r)
	end
	return table.concat(out)
end
`

const base64DecoderSource = `
local function __luamix_b64_decode(s)
	local alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	local lookup = {}
	for i = 1, #alphabet do
		lookup[string.sub(alphabet, i, i)] = i - 1
	end
	local bits = ""
	for i = 1, #s do
		local ch = string.sub(s, i, i)
		if ch ~= "=" then
			local v = lookup[ch]
			local piece = ""
			for j = 1, 6 do
				piece = (v % 2) .. piece
				v = math.floor(v / 2)
			end
			bits = bits .. piece
		end
	end
	local out = {}
	for i = 1, #bits - 7, 8 do
		local byte = 0
		for j = 0, 7 do
			byte = byte * 2 + tonumber(string.sub(bits, i + j, i + j))
		end
		out[#out + 1] = string.char(byte)
	end
	return table.concat(out)
end
`

const huffmanDecoderSource = `
local function __luamix_huff_decode(bits, codes)
	local out = {}
	local acc = ""
	for i = 1, #bits do
		acc = acc .. string.sub(bits, i, i)
		local ch = codes[acc]
		if ch then
			out[#out + 1] = ch
			acc = ""
		end
	end
	return table.concat(out)
end
`

// StringEncoder replaces string literals with runtime decoding expressions.
// Empty strings are left alone: there is nothing to hide and every algorithm
// would round-trip them to dead weight.
type StringEncoder struct {
	algorithm config.Algorithm
	rng       *rand.Rand
	count     int
}

// NewStringEncoder returns an encoder for one obfuscation run. rng drives
// key and chunk-size choices so a fixed seed reproduces the output.
func NewStringEncoder(algorithm config.Algorithm, rng *rand.Rand) *StringEncoder {
	return &StringEncoder{algorithm: algorithm, rng: rng}
}

// Count reports how many literals were encoded by the last Encode call.
func (e *StringEncoder) Count() int {
	return e.count
}

// Encode rewrites every non-empty string literal in the chunk and, when the
// algorithm needs one, prepends its decoder helper. The helper is ordinary
// Lua parsed through the same front end as user input.
func (e *StringEncoder) Encode(chunk *luaast.Chunk) (int, error) {
	e.count = 0
	if e.algorithm == config.AlgorithmNone {
		return 0, nil
	}

	luaast.RewriteExprs(chunk, func(expr luaast.Expr) luaast.Expr {
		lit, ok := expr.(*luaast.StringLiteral)
		if !ok || lit.Value == "" {
			return expr
		}
		e.count++
		switch e.algorithm {
		case config.AlgorithmXOR:
			return e.xorCall(lit.Value)
		case config.AlgorithmBase64:
			return base64Call(lit.Value)
		case config.AlgorithmHuffman:
			return huffmanCall(lit.Value)
		case config.AlgorithmChunked:
			return e.chunkedExpr(lit.Value)
		}
		return expr
	})

	if e.count == 0 {
		return 0, nil
	}

	var helper string
	switch e.algorithm {
	case config.AlgorithmXOR:
		helper = xorDecoderSource
	case config.AlgorithmBase64:
		helper = base64DecoderSource
	case config.AlgorithmHuffman:
		helper = huffmanDecoderSource
	case config.AlgorithmChunked:
		// string.char needs no helper.
	}
	if helper != "" {
		decl, err := parser.Parse(helper)
		if err != nil {
			return 0, fmt.Errorf("parsing decoder helper: %w", err)
		}
		chunk.Body = append(decl.Body, chunk.Body...)
	}
	return e.count, nil
}

// xorCall encodes s against a single random key byte in 1..255. The decoder
// cycles its key argument, so a one-byte key string applies to every byte.
func (e *StringEncoder) xorCall(s string) luaast.Expr {
	key := byte(1 + e.rng.Intn(255))
	enc := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		enc[i] = s[i] ^ key
	}
	return &luaast.CallExpression{
		Callee: &luaast.Identifier{Name: xorDecoderName},
		Arguments: []luaast.Expr{
			&luaast.StringLiteral{Value: string(enc)},
			&luaast.StringLiteral{Value: string([]byte{key})},
		},
	}
}

func base64Call(s string) luaast.Expr {
	return &luaast.CallExpression{
		Callee: &luaast.Identifier{Name: base64DecoderName},
		Arguments: []luaast.Expr{
			&luaast.StringLiteral{Value: base64.StdEncoding.EncodeToString([]byte(s))},
		},
	}
}

func huffmanCall(s string) luaast.Expr {
	bits, codes := huffmanEncode(s)
	table := &luaast.TableConstructor{}
	syms := make([]string, 0, len(codes))
	for sym := range codes {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	for _, sym := range syms {
		table.Fields = append(table.Fields, &luaast.TableField{
			Key:   &luaast.StringLiteral{Value: codes[sym]},
			Value: &luaast.StringLiteral{Value: sym},
		})
	}
	return &luaast.CallExpression{
		Callee: &luaast.Identifier{Name: huffmanDecoderName},
		Arguments: []luaast.Expr{
			&luaast.StringLiteral{Value: bits},
			table,
		},
	}
}

// chunkedExpr splits the string into short runs rendered as
// string.char(...) calls joined with the concat operator.
func (e *StringEncoder) chunkedExpr(s string) luaast.Expr {
	var parts []luaast.Expr
	for i := 0; i < len(s); {
		n := 2 + e.rng.Intn(3)
		if i+n > len(s) {
			n = len(s) - i
		}
		call := &luaast.CallExpression{
			Callee: &luaast.MemberExpression{
				Object: &luaast.Identifier{Name: "string"},
				Member: "char",
			},
		}
		for _, b := range []byte(s[i : i+n]) {
			call.Arguments = append(call.Arguments, &luaast.NumericLiteral{
				Raw:   fmt.Sprintf("%d", b),
				Value: float64(b),
			})
		}
		parts = append(parts, call)
		i += n
	}
	expr := parts[0]
	for _, p := range parts[1:] {
		expr = &luaast.BinaryExpression{Operator: "..", Left: expr, Right: p}
	}
	if len(parts) > 1 {
		return &luaast.ParenExpression{Inner: expr}
	}
	return expr
}

// huffmanEncode builds a canonical tree from byte frequencies and returns the
// bit string plus the code-to-symbol mapping the decoder consumes. Ties break
// on byte value so the same input always yields the same codes.
func huffmanEncode(s string) (string, map[string]string) {
	freq := make(map[byte]int)
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}

	type node struct {
		weight      int
		order       int
		sym         byte
		leaf        bool
		left, right *node
	}
	nodes := make([]*node, 0, len(freq))
	for b, w := range freq {
		nodes = append(nodes, &node{weight: w, order: int(b), sym: b, leaf: true})
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].weight != nodes[j].weight {
			return nodes[i].weight < nodes[j].weight
		}
		return nodes[i].order < nodes[j].order
	})

	codes := make(map[string]string)
	if len(nodes) == 1 {
		codes[string(nodes[0].sym)] = "0"
		bits := make([]byte, len(s))
		for i := range bits {
			bits[i] = '0'
		}
		return string(bits), invert(codes)
	}

	next := 256
	for len(nodes) > 1 {
		a, b := nodes[0], nodes[1]
		merged := &node{weight: a.weight + b.weight, order: next, left: a, right: b}
		next++
		nodes = nodes[2:]
		pos := sort.Search(len(nodes), func(i int) bool {
			if nodes[i].weight != merged.weight {
				return nodes[i].weight > merged.weight
			}
			return nodes[i].order > merged.order
		})
		nodes = append(nodes, nil)
		copy(nodes[pos+1:], nodes[pos:])
		nodes[pos] = merged
	}

	var assign func(n *node, prefix string)
	assign = func(n *node, prefix string) {
		if n.leaf {
			codes[string(n.sym)] = prefix
			return
		}
		assign(n.left, prefix+"0")
		assign(n.right, prefix+"1")
	}
	assign(nodes[0], "")

	var bits []byte
	for i := 0; i < len(s); i++ {
		bits = append(bits, codes[string(s[i])]...)
	}
	return string(bits), invert(codes)
}

// invert flips symbol→code into the code→symbol shape the Lua decoder wants.
func invert(codes map[string]string) map[string]string {
	out := make(map[string]string, len(codes))
	for sym, code := range codes {
		out[code] = sym
	}
	return out
}
