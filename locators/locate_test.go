package locators

import (
	"errors"
	"strings"
	"testing"

	"github.com/reusee/sublingual/exprs"
)

// lineParser reports one call for every "name(" occurrence
func lineParser(text string, firstLine int) ([]exprs.CallSite, error) {
	var ret []exprs.CallSite
	for i, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "!") {
			return nil, errors.New("bad fragment")
		}
		for col := 0; ; {
			idx := strings.Index(line[col:], "(")
			if idx < 0 {
				break
			}
			start := strings.LastIndexAny(line[:col+idx], " =.\t") + 1
			ret = append(ret, exprs.CallSite{
				Callee: line[start : col+idx],
				Line:   firstLine + i,
				Col:    start + 1,
			})
			col += idx + 1
		}
	}
	return ret, nil
}

func lines(n int, calls map[int]string) []string {
	ret := make([]string, n)
	for i := range ret {
		ret[i] = "x = 1"
	}
	for line, text := range calls {
		ret[line-1] = text
	}
	return ret
}

func TestLocateExact(t *testing.T) {
	src := lines(20, map[int]string{
		8:  "a = chat()",
		10: "b = chat()",
		12: "c = chat()",
	})
	site, err := Locate(src, 10, Target{Func: "chat"}, GoSyntax, lineParser)
	if err != nil {
		t.Fatal(err)
	}
	if site.Line != 10 {
		t.Fatalf("got %d", site.Line)
	}
}

func TestLocatePreceding(t *testing.T) {
	src := lines(20, map[int]string{
		6:  "a = chat()",
		8:  "b = chat()",
		12: "c = chat()",
	})
	site, err := Locate(src, 10, Target{Func: "chat"}, GoSyntax, lineParser)
	if err != nil {
		t.Fatal(err)
	}
	if site.Line != 8 {
		t.Fatalf("got %d", site.Line)
	}
}

func TestLocateFollowing(t *testing.T) {
	src := lines(20, map[int]string{
		4:  "a = chat()",
		13: "b = chat()",
		15: "c = chat()",
	})
	site, err := Locate(src, 10, Target{Func: "chat"}, GoSyntax, lineParser)
	if err != nil {
		t.Fatal(err)
	}
	if site.Line != 13 {
		t.Fatalf("got %d", site.Line)
	}
}

func TestLocateNotFound(t *testing.T) {
	src := lines(30, map[int]string{
		2:  "a = chat()",
		10: "b = other()",
		25: "c = chat()",
	})
	_, err := Locate(src, 10, Target{Func: "chat"}, GoSyntax, lineParser)
	if !errors.Is(err, ErrCallNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestLocateSkipsUnparsable(t *testing.T) {
	src := lines(20, map[int]string{
		10: "!c = chat()",
		11: "d = client.chat()",
	})
	site, err := Locate(src, 10, Target{Func: "chat"}, GoSyntax, lineParser)
	if err != nil {
		t.Fatal(err)
	}
	if site.Line != 11 || site.Callee != "chat" {
		t.Fatalf("got %+v", site)
	}
}

func TestLocateMultiLine(t *testing.T) {
	src := lines(20, map[int]string{
		9:  "r = chat(",
		10: "  a,",
		11: ")",
	})
	// reported line is the last line of the call
	site, err := Locate(src, 11, Target{Func: "chat"}, GoSyntax, lineParser)
	if err != nil {
		t.Fatal(err)
	}
	if site.Line != 9 {
		t.Fatalf("got %d", site.Line)
	}
}

func TestSelectSameLine(t *testing.T) {
	site, err := Select([]exprs.CallSite{
		{Callee: "b", Line: 3, Col: 10},
		{Callee: "a", Line: 3, Col: 2},
	}, 3, Target{})
	if err != nil {
		t.Fatal(err)
	}
	if site.Callee != "a" {
		t.Fatalf("got %+v", site)
	}
}
