package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScan(t *testing.T) {
	src := `var a = require("./a");
var b = require( './b.css' );
obj.require("./skip");
const lazy = () => import("./lazy");
var c = __toESM(require("react"));
x.import("./skip2");
require(dynamicName);
`
	reqs := Scan(src)
	var specs []string
	var dynamic []bool
	for _, r := range reqs {
		specs = append(specs, r.Specifier)
		dynamic = append(dynamic, r.Dynamic)
	}
	assert.Equal(t, []string{"./a", "./b.css", "./lazy", "react"}, specs)
	assert.Equal(t, []bool{false, false, true, false}, dynamic)
}

func TestScan_Escapes(t *testing.T) {
	reqs := Scan(`require('it\'s.js'); require("q\"uote.js")`)
	if assert.Len(t, reqs, 2) {
		assert.Equal(t, "it's.js", reqs[0].Specifier)
		assert.Equal(t, `q"uote.js`, reqs[1].Specifier)
	}
}

func TestRewrite(t *testing.T) {
	src := `var a = require("./a"); import("./b"); require("keep");`
	out := Rewrite(src, func(r Request) string {
		switch r.Specifier {
		case "./a":
			return "require(1)"
		case "./b":
			return "__webrig_require__.load(1, 2)"
		}
		return ""
	})
	assert.Equal(t, `var a = require(1); __webrig_require__.load(1, 2); require("keep");`, out)
}

func TestScan_SkipsLiteralsAndComments(t *testing.T) {
	src := "var help = \"use require('lodash') to load it\";\n" +
		"var q = 'require(\"fs\")';\n" +
		"var tpl = `import(\"./nope\") ${require(\"./inner\")} done`;\n" +
		"// require(\"./line\")\n" +
		"/* import(\"./block\") */\n" +
		"var re = /require\\(\"re\"\\)/.test(help);\n" +
		"var half = total / 2; var real = require(\"./real\") / 1;\n"

	var specs []string
	for _, r := range Scan(src) {
		specs = append(specs, r.Specifier)
	}
	assert.Equal(t, []string{"./inner", "./real"}, specs)
}

func TestScan_RegexAfterKeyword(t *testing.T) {
	reqs := Scan("function f(s) { return /'/.test(s) ? require(\"./a\") : null; }")
	if assert.Len(t, reqs, 1) {
		assert.Equal(t, "./a", reqs[0].Specifier)
	}
}

func TestRewrite_LeavesStringsAlone(t *testing.T) {
	src := `var msg = "call require('fs') here"; var a = require("fs");`
	out := Rewrite(src, func(r Request) string {
		if r.Specifier == "fs" {
			return "require(3)"
		}
		return ""
	})
	assert.Equal(t, `var msg = "call require('fs') here"; var a = require(3);`, out)
}
