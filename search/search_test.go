package search

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexandro/bugreport-agent/ignore"
	"github.com/lexandro/bugreport-agent/language"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestSearcher(t *testing.T, root string) *Searcher {
	t.Helper()
	s, err := NewSearcher(Options{RootDir: root})
	if err != nil {
		t.Fatalf("failed to create searcher: %v", err)
	}
	return s
}

func Test_Search_FindsAddFunction(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "foo.py", "def add(a, b):\n    return a + b\n")

	result, err := newTestSearcher(t, root).Search(context.Background(), "add function error", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, m := range result.Matches {
		if strings.HasSuffix(m.File, "foo.py") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a match in foo.py, got %+v", result.Matches)
	}
	if !result.Fallback {
		t.Error("expected the short keyword fallback to be used")
	}
}

func Test_Search_NoFallbackWhenKeywordsMatch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "foo.py", "def add(a, b):\n    return a + b\n")
	writeFile(t, root, "errors.py", "class FunctionError(Exception):\n    pass\n")

	result, err := newTestSearcher(t, root).Search(context.Background(), "add function error", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Fallback {
		t.Error("expected regular keywords to be enough")
	}
	for _, m := range result.Matches {
		if strings.HasSuffix(m.File, "foo.py") {
			t.Errorf("expected foo.py to not match regular keywords, got %+v", m)
		}
	}
}

func Test_ScoreFiles_CountsOccurrences(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "payment payment payment\ncheckout\n")
	writeFile(t, root, "b.go", "PAYMENT\n")
	writeFile(t, root, "c.go", "nothing relevant here\n")

	scores, scanned, _, err := newTestSearcher(t, root).ScoreFiles(context.Background(), []string{"payment", "checkout"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scanned != 3 {
		t.Errorf("expected 3 scanned files, got %d", scanned)
	}

	byName := make(map[string]int)
	for _, s := range scores {
		byName[filepath.Base(s.Path)] = s.Score
	}
	if byName["a.go"] != 4 {
		t.Errorf("expected a.go score 4, got %d", byName["a.go"])
	}
	if byName["b.go"] != 1 {
		t.Errorf("expected b.go score 1, got %d", byName["b.go"])
	}
	if _, ok := byName["c.go"]; ok {
		t.Error("expected zero-score c.go to be excluded")
	}
}

func Test_ScoreFiles_OnlySourceExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes.md", "payment payment\n")
	writeFile(t, root, "styles.css", "payment\n")
	writeFile(t, root, "pay.rb", "payment\n")

	scores, _, _, err := newTestSearcher(t, root).ScoreFiles(context.Background(), []string{"payment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 1 || filepath.Base(scores[0].Path) != "pay.rb" {
		t.Errorf("expected only pay.rb, got %+v", scores)
	}
}

func Test_ScoreFiles_SkipsVCSDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/hooks/pre-commit.py", "payment\n")
	writeFile(t, root, ".hg/store.py", "payment\n")
	writeFile(t, root, "src/pay.py", "payment\n")

	scores, _, _, err := newTestSearcher(t, root).ScoreFiles(context.Background(), []string{"payment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 1 || !strings.HasSuffix(filepath.ToSlash(scores[0].Path), "src/pay.py") {
		t.Errorf("expected only src/pay.py, got %+v", scores)
	}
}

func Test_ScoreFiles_RecordsSkippedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "blob.js", "payment\x00\x01\x02")
	writeFile(t, root, "big.js", strings.Repeat("payment ", 100))
	writeFile(t, root, "small.js", "payment\n")

	matcher := ignore.NewMatcher(ignore.MatcherOptions{RootDir: root, MaxFileSizeBytes: 100})
	s, err := NewSearcher(Options{RootDir: root, Ignore: matcher, SkipBinary: true})
	if err != nil {
		t.Fatal(err)
	}

	scores, _, skipped, err := s.ScoreFiles(context.Background(), []string{"payment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 1 || filepath.Base(scores[0].Path) != "small.js" {
		t.Errorf("expected only small.js scored, got %+v", scores)
	}

	reasons := make(map[string]SkipReason)
	for _, fr := range skipped {
		reasons[filepath.Base(fr.Path)] = fr.Reason
	}
	if reasons["blob.js"] != SkipBinary {
		t.Errorf("expected blob.js skipped as binary, got %q", reasons["blob.js"])
	}
	if reasons["big.js"] != SkipTooLarge {
		t.Errorf("expected big.js skipped as too large, got %q", reasons["big.js"])
	}
}

func Test_ScoreFiles_InvalidUTF8IsNotFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "latin1.py", "# caf\xe9\ndef payment():\n    pass\n")

	scores, _, skipped, err := newTestSearcher(t, root).ScoreFiles(context.Background(), []string{"payment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 1 {
		t.Errorf("expected latin1.py to be scored, got %+v (skipped %+v)", scores, skipped)
	}
}

func Test_ScoreFiles_MissingRoot(t *testing.T) {
	s := newTestSearcher(t, filepath.Join(t.TempDir(), "missing"))
	if _, _, _, err := s.ScoreFiles(context.Background(), []string{"payment"}); err == nil {
		t.Error("expected error for missing root")
	}
}

func Test_ScoreFiles_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "App.tsx", "payment\n")
	writeFile(t, root, "main.go", "payment\n")

	sources, err := language.NewSourceMatcher([]string{"tsx"})
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSearcher(Options{RootDir: root, Sources: sources})
	if err != nil {
		t.Fatal(err)
	}
	scores, _, _, err := s.ScoreFiles(context.Background(), []string{"payment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 1 || filepath.Base(scores[0].Path) != "App.tsx" {
		t.Errorf("expected only App.tsx, got %+v", scores)
	}
}

func Test_TopFiles_OrderAndLimit(t *testing.T) {
	scores := []FileScore{
		{Path: "a", Score: 2},
		{Path: "b", Score: 5},
		{Path: "c", Score: 2},
		{Path: "d", Score: 0},
		{Path: "e", Score: 5},
	}

	top := TopFiles(scores, 3)
	want := []string{"b", "e", "a"}
	if len(top) != len(want) {
		t.Fatalf("expected %d files, got %+v", len(want), top)
	}
	for i, path := range want {
		if top[i].Path != path {
			t.Errorf("top[%d] = %s, want %s", i, top[i].Path, path)
		}
	}
}

func Test_TopFiles_NeverReturnsZeroScore(t *testing.T) {
	top := TopFiles([]FileScore{{Path: "a", Score: 0}, {Path: "b", Score: 1}}, 5)
	if len(top) != 1 || top[0].Path != "b" {
		t.Errorf("expected only b, got %+v", top)
	}
	if TopFiles([]FileScore{{Path: "a", Score: 1}}, 0) != nil {
		t.Error("expected nil for n <= 0")
	}
}

func Test_MatchLines_CapsAtLimitAcrossFiles(t *testing.T) {
	root := t.TempDir()
	first := writeFile(t, root, "first.go", "payment one\npayment two\nother\npayment three\n")
	second := writeFile(t, root, "second.go", "payment four\n")

	s := newTestSearcher(t, root)
	files := []FileScore{{Path: first, Score: 3}, {Path: second, Score: 1}}

	matches, _ := s.MatchLines(context.Background(), files, []string{"payment"}, 2)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %+v", matches)
	}
	if matches[0].Line != 1 || matches[1].Line != 2 {
		t.Errorf("expected lines 1 and 2, got %+v", matches)
	}
	for _, m := range matches {
		if m.File != first {
			t.Errorf("expected later file to contribute nothing, got %+v", m)
		}
	}
}

func Test_MatchLines_RecordsUnreadable(t *testing.T) {
	s := newTestSearcher(t, t.TempDir())
	files := []FileScore{{Path: filepath.Join(t.TempDir(), "gone.go"), Score: 1}}

	matches, skipped := s.MatchLines(context.Background(), files, []string{"payment"}, 5)
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %+v", matches)
	}
	if len(skipped) != 1 || skipped[0].Reason != SkipUnreadable {
		t.Errorf("expected unreadable skip, got %+v", skipped)
	}
}

func Test_Search_MatchesNeverExceedTopN(t *testing.T) {
	root := t.TempDir()
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("checkout failure\n")
	}
	writeFile(t, root, "a.js", sb.String())
	writeFile(t, root, "b.js", sb.String())

	result, err := newTestSearcher(t, root).Search(context.Background(), "checkout failure", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Matches) != 3 {
		t.Errorf("expected exactly 3 matches, got %d", len(result.Matches))
	}
	if len(result.Files) > 3 {
		t.Errorf("expected at most 3 files, got %d", len(result.Files))
	}
}

func Test_Search_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "payment\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestSearcher(t, root).Search(ctx, "payment", 5); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func Test_Search_GreekFinalSigmaMatchesItself(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "greek.py", "# ΟΔΟΣ lookup\ndef find(street):\n    return street\n")

	result, err := newTestSearcher(t, root).Search(context.Background(), "ΟΔΟΣ", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Files) != 1 || !strings.HasSuffix(result.Files[0].Path, "greek.py") {
		t.Fatalf("expected greek.py to score, got files %+v (keywords %q)", result.Files, result.Keywords)
	}
	if len(result.Matches) != 1 || result.Matches[0].Line != 1 {
		t.Errorf("expected a match on line 1, got %+v", result.Matches)
	}
}

func Test_ScoreFiles_NulByteSourceScoredByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "vendored.go", "package x\x00\n// payment handler\nfunc payment() {}\n")

	scores, _, skipped, err := newTestSearcher(t, root).ScoreFiles(context.Background(), []string{"payment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 1 || scores[0].Score != 2 {
		t.Errorf("expected vendored.go scored 2, got %+v", scores)
	}
	if len(skipped) != 0 {
		t.Errorf("expected nothing skipped, got %+v", skipped)
	}
}

func Test_ScoreFiles_ExcludedFileRecordedAsIgnored(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "gen/payment_pb.go", "payment payment\n")
	writeFile(t, root, "payment.go", "payment\n")

	matcher := ignore.NewMatcher(ignore.MatcherOptions{RootDir: root, ExcludePatterns: []string{"*_pb.go"}})
	s, err := NewSearcher(Options{RootDir: root, Ignore: matcher})
	if err != nil {
		t.Fatal(err)
	}

	scores, _, skipped, err := s.ScoreFiles(context.Background(), []string{"payment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 1 || filepath.Base(scores[0].Path) != "payment.go" {
		t.Errorf("expected only payment.go scored, got %+v", scores)
	}
	if len(skipped) != 1 || skipped[0].Reason != SkipIgnored || string(skipped[0].Reason) != "ignored" {
		t.Errorf("expected payment_pb.go skipped as ignored, got %+v", skipped)
	}
}
