package resources

import (
	"context"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

// DataLinker is the per-category capability for resource data linkage. Each
// data category (genotype, mrna, phenotype, inbredset-group) gets one
// implementation; the service dispatches on the resource's category key at a
// single point.
type DataLinker interface {
	// Key is the category key this linker serves.
	Key() string

	// Data returns a page of linked rows for the resource.
	Data(ctx context.Context, resourceID uuid.UUID, offset, limit int) ([]map[string]any, error)

	// Link attaches a data item to the resource on behalf of its owning
	// group. A data item belongs to at most one resource.
	Link(ctx context.Context, groupID, resourceID, dataLinkID uuid.UUID) error

	// Unlink detaches a data item from the resource.
	Unlink(ctx context.Context, resourceID, dataLinkID uuid.UUID) error

	// AttachBulk populates Data on every given resource of this category.
	AttachBulk(ctx context.Context, rs []repository.Resource) ([]repository.Resource, error)
}

// tableLinker serves one category over the shared link-table repository.
type tableLinker struct {
	key   string
	links repository.DataLinkRepository
}

func (l *tableLinker) Key() string { return l.key }

func (l *tableLinker) Data(ctx context.Context, resourceID uuid.UUID, offset, limit int) ([]map[string]any, error) {
	return l.links.ResourceData(ctx, l.key, resourceID, offset, limit)
}

func (l *tableLinker) Link(ctx context.Context, groupID, resourceID, dataLinkID uuid.UUID) error {
	return l.links.LinkData(ctx, l.key, groupID, resourceID, dataLinkID)
}

func (l *tableLinker) Unlink(ctx context.Context, resourceID, dataLinkID uuid.UUID) error {
	return l.links.UnlinkData(ctx, l.key, resourceID, dataLinkID)
}

func (l *tableLinker) AttachBulk(ctx context.Context, rs []repository.Resource) ([]repository.Resource, error) {
	return l.links.AttachData(ctx, rs)
}

// NewLinkers builds the standard linker set over the link-table repository.
func NewLinkers(links repository.DataLinkRepository) map[string]DataLinker {
	keys := []string{
		repository.CategoryGenotype,
		repository.CategoryMrna,
		repository.CategoryPhenotype,
		repository.CategoryInbredsetGroup,
	}
	out := make(map[string]DataLinker, len(keys))
	for _, k := range keys {
		out[k] = &tableLinker{key: k, links: links}
	}
	return out
}
