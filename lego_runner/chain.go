package lego_runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

var ErrChainNotFound = errors.New("certificate chain not found")

// Chain is the PEM blocks of an issued chain file in leaf-first order,
// as lego writes them.
type Chain []string

// Leaf returns the end-entity certificate.
func (c Chain) Leaf() string {
	return c[0]
}

// CA returns the last certificate in the file, the closest to the root
// that the issuer handed back.
func (c Chain) CA() string {
	return c[len(c)-1]
}

// RootToLeaf returns a reversed copy, root (or highest intermediate)
// first.
func (c Chain) RootToLeaf() []string {
	return lo.Reverse(append([]string{}, c...))
}

// FetchChain reads the chain file lego wrote for the given subject and
// splits it into PEM blocks. Returns ErrChainNotFound (wrapped) when
// the file does not exist or holds no blocks.
func (r *Runner) FetchChain(subject string) (Chain, error) {
	path := filepath.Join(r.CertsDir, subject+".crt")
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrChainNotFound, path)
		}
		return nil, fmt.Errorf("error in os.ReadFile: %w", err)
	}

	blocks := lo.Filter(strings.Split(string(content), "\n\n"), func(block string, _ int) bool {
		return strings.TrimSpace(block) != ""
	})
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrChainNotFound, path)
	}
	return blocks, nil
}
