package build

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kata-shadcn/kata-registry/internal/contenthash"
	"github.com/kata-shadcn/kata-registry/internal/errors"
	"github.com/kata-shadcn/kata-registry/internal/index"
	"github.com/kata-shadcn/kata-registry/internal/registry"
)

// itemResult is the outcome of building one manifest item.
type itemResult struct {
	entry   index.Entry
	missing int
	skipped bool
}

// buildItem reads the sources of it, writes its registry item and returns
// its index entry. Items with no readable sources are reported as skipped.
func (b *Builder) buildItem(ctx context.Context, it registry.Item, categoryName string) (itemResult, error) {
	var res itemResult

	ri := &registry.RegistryItem{
		Schema:               b.config.SchemaURL,
		Name:                 it.Name,
		Type:                 it.ItemType(),
		Title:                it.Title,
		Description:          it.Description,
		Dependencies:         it.Dependencies,
		DevDependencies:      it.DevDependencies,
		RegistryDependencies: it.RegistryDependencies,
		Files:                make([]registry.ItemFile, 0, len(it.Files)),
	}

	lines := 0
	present := make([]string, 0, len(it.Files))
	for _, f := range it.Files {
		full, err := sourcePath(b.config.Root(), it.Name, f.Path)
		if err != nil {
			return res, err
		}

		data, err := os.ReadFile(full)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				res.missing++
				b.warn(it.Name, "source file missing: "+f.Path)
				continue
			}
			return res, errors.New("KR120").
				WithFile(full).
				WithDetailf("%s: cannot read %s", it.Name, f.Path).
				Wrap(err)
		}

		fileType := f.Type
		if fileType == "" {
			fileType = ri.Type
		}
		if !utf8.Valid(data) {
			b.warn(it.Name, f.Path+" is not valid UTF-8; invalid bytes are replaced with U+FFFD")
		}
		content := string(data)
		ri.Files = append(ri.Files, registry.ItemFile{
			Path:    RewritePath(f.Path, b.config.Build.PathRewrites, b.config.Build.FallbackDir),
			Content: content,
			Type:    fileType,
			Target:  f.Target,
		})
		lines += index.CountLines(content)
		present = append(present, filepath.ToSlash(filepath.Clean(filepath.FromSlash(f.Path))))
	}

	if len(ri.Files) == 0 {
		res.skipped = true
		b.warn(it.Name, "all source files missing, skipping")
		return res, nil
	}
	if res.missing > 0 {
		b.warn(it.Name, "building from the files that exist")
	}

	hash, err := contenthash.Sum(ri)
	if err != nil {
		return res, errors.New("KR131").WithDetail(it.Name).Wrap(err)
	}

	out := filepath.Join(b.config.OutputPath(), it.Name+".json")
	if _, err := index.WriteFile(out, ri, true); err != nil {
		return res, errors.New("KR130").WithFile(out).Wrap(err)
	}

	res.entry = index.Entry{
		Name:        it.Name,
		Type:        ri.Type,
		Title:       it.Title,
		Description: it.Description,
		Category:    categoryName,
		Tags:        index.Tags(it.Name, it.Description, b.config.Build.MaxDescriptionTags),
		Complexity: index.Complexity{
			Files:                len(ri.Files),
			Lines:                lines,
			Dependencies:         len(it.Dependencies),
			RegistryDependencies: len(it.RegistryDependencies),
		},
		ContentHash:    hash,
		LastModified:   b.dater.LastModified(ctx, present),
		PeerComponents: []string{},
	}

	b.logger.Debug("built component",
		zap.String("name", it.Name),
		zap.String("category", categoryName),
		zap.String("hash", hash),
		zap.Int("files", len(ri.Files)),
	)
	return res, nil
}
