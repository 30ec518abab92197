// Package workspace classifies visited pages into primary, support and drift workspaces.
package workspace

import (
	"github.com/thebtf/focusforge/internal/taxonomy"
	"github.com/thebtf/focusforge/pkg/models"
)

// Classification is the result of classifying one visit.
type Classification struct {
	Type   models.WorkspaceType
	Ignore bool // auth, browser-internal or own-product noise
}

// Classifier maps (url, title, domain) triples to workspaces.
type Classifier struct {
	tax *taxonomy.Taxonomy
}

// NewClassifier creates a classifier backed by tax.
func NewClassifier(tax *taxonomy.Taxonomy) *Classifier {
	return &Classifier{tax: tax}
}

// Taxonomy returns the tables the classifier was built with.
func (c *Classifier) Taxonomy() *taxonomy.Taxonomy {
	return c.tax
}

// Classify applies the rules in order; the first match wins:
//  1. internal/deployment domain -> support, ignored
//  2. auth or browser-internal URL -> support, ignored
//  3. primary domain
//  4. support domain
//  5. drift domain, unless a learning-capable domain shows a learning title
//  6. anything else -> support
func (c *Classifier) Classify(url, title, domain string) Classification {
	switch {
	case c.tax.IsInternal(domain):
		return Classification{Type: models.WorkspaceSupport, Ignore: true}
	case c.tax.IsBlockedURL(url):
		return Classification{Type: models.WorkspaceSupport, Ignore: true}
	case c.tax.IsPrimary(domain):
		return Classification{Type: models.WorkspacePrimary}
	case c.tax.IsSupport(domain):
		return Classification{Type: models.WorkspaceSupport}
	case c.tax.IsDrift(domain):
		if c.tax.IsLearningDomain(domain) && c.tax.HasLearningHint(title) {
			return Classification{Type: models.WorkspaceSupport}
		}
		return Classification{Type: models.WorkspaceDrift}
	}
	return Classification{Type: models.WorkspaceSupport}
}
