package workspace

import (
	"bufio"
	"context"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mune-tada/corkboard/pkg/metrics"
)

// PreviewMaxLines and PreviewMaxRunes bound derived preview text. Cards
// only ever show a few clamped lines, so there is no point carrying more.
const (
	PreviewMaxLines = 12
	PreviewMaxRunes = 600
)

// Preview derives the short excerpt shown on a card: leading markdown
// heading markers and decoration stripped, blank runs collapsed, bounded in
// lines and runes.
func (w *Workspace) Preview(path string) (string, error) {
	defer metrics.Timer(metrics.PreviewLoad)()
	abs, err := w.resolve(path)
	if err != nil {
		return "", err
	}
	f, err := os.Open(abs)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var lines []string
	blank := true
	runes := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() && len(lines) < PreviewMaxLines && runes < PreviewMaxRunes {
		line := cleanPreviewLine(scanner.Text())
		if line == "" {
			// Collapse runs of blank lines to one separator.
			if !blank {
				lines = append(lines, "")
				blank = true
			}
			continue
		}
		blank = false
		lines = append(lines, line)
		runes += len([]rune(line))
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	out := strings.TrimSpace(strings.Join(lines, "\n"))
	r := []rune(out)
	if len(r) > PreviewMaxRunes {
		out = string(r[:PreviewMaxRunes])
	}
	return out, nil
}

// cleanPreviewLine strips markdown structure that reads as noise in a
// card-sized excerpt.
func cleanPreviewLine(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimLeft(s, "#")
	s = strings.TrimPrefix(s, "> ")
	s = strings.TrimSpace(s)
	// Horizontal rules and fences carry no preview content.
	if s == "---" || s == "***" || strings.HasPrefix(s, "```") {
		return ""
	}
	return s
}

// PreviewResult is the outcome of deriving one preview.
type PreviewResult struct {
	Path    string
	Preview string
	Err     error
}

// previewConcurrency bounds parallel file reads.
const previewConcurrency = 16

// Previews derives previews for many paths concurrently. Individual
// failures are captured per path and do not abort the batch.
func (w *Workspace) Previews(ctx context.Context, paths []string) []PreviewResult {
	results := make([]PreviewResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(previewConcurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = PreviewResult{Path: path, Err: ctx.Err()}
				return nil
			default:
			}
			preview, err := w.Preview(path)
			results[i] = PreviewResult{Path: path, Preview: preview, Err: err}
			return nil
		})
	}

	// Workers never return errors; Wait only serves as a join point.
	_ = g.Wait()
	return results
}

// PreviewMap is Previews flattened into a path-indexed map, dropping
// failures.
func (w *Workspace) PreviewMap(ctx context.Context, paths []string) map[string]string {
	out := make(map[string]string, len(paths))
	for _, r := range w.Previews(ctx, paths) {
		if r.Err == nil {
			out[r.Path] = r.Preview
		}
	}
	return out
}
