package pg

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

var _ repository.DataLinkRepository = (*Store)(nil)

// linkTables maps a data category key to the table holding its resource
// links. Every link table shares the columns (group_id, resource_id,
// data_link_id) with data_link_id unique per table, plus category-specific
// dataset columns.
var linkTables = map[string]string{
	repository.CategoryGenotype:       "genotype_resources",
	repository.CategoryMrna:           "mrna_resources",
	repository.CategoryPhenotype:      "phenotype_resources",
	repository.CategoryInbredsetGroup: "inbredset_group_resources",
}

func linkTable(category string) (string, error) {
	t, ok := linkTables[category]
	if !ok {
		return "", fmt.Errorf("data links: unsupported category %q: %w", category, repository.ErrInvalid)
	}
	return t, nil
}

// ResourceData returns a page of link rows for a resource. Columns vary by
// category so rows are scanned dynamically into maps.
func (s *Store) ResourceData(ctx context.Context, categoryKey string, resourceID uuid.UUID, offset, limit int) ([]map[string]any, error) {
	table, err := linkTable(categoryKey)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT * FROM %s WHERE resource_id = $1 ORDER BY data_link_id OFFSET $2`, table)
	args := []any{resourceID, offset}
	if limit > 0 {
		q += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []map[string]any
	cols := rows.FieldDescriptions()
	vals := make([]any, len(cols))
	for i := range vals {
		vals[i] = new(any)
	}
	for rows.Next() {
		if err := rows.Scan(vals...); err != nil {
			return nil, mapErr(err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c.Name] = *(vals[i].(*any))
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// LinkData attaches a data-link id to a resource. The unique index on
// data_link_id guarantees a data item belongs to at most one resource, so
// linking it twice surfaces as ErrConflict.
func (s *Store) LinkData(ctx context.Context, categoryKey string, groupID, resourceID, dataLinkID uuid.UUID) error {
	table, err := linkTable(categoryKey)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`INSERT INTO %s (group_id, resource_id, data_link_id) VALUES ($1, $2, $3)`, table)
	_, err = s.pool.Exec(ctx, q, groupID, resourceID, dataLinkID)
	return mapErr(err)
}

func (s *Store) UnlinkData(ctx context.Context, categoryKey string, resourceID, dataLinkID uuid.UUID) error {
	table, err := linkTable(categoryKey)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE resource_id = $1 AND data_link_id = $2`, table)
	tag, err := s.pool.Exec(ctx, q, resourceID, dataLinkID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AttachData loads the linked rows for every resource, one query per data
// category, and returns the resources with Data populated. Resources in
// non-data categories pass through untouched.
func (s *Store) AttachData(ctx context.Context, resources []repository.Resource) ([]repository.Resource, error) {
	byCategory := make(map[string][]uuid.UUID)
	for _, r := range resources {
		if _, ok := linkTables[r.Category.Key]; ok {
			byCategory[r.Category.Key] = append(byCategory[r.Category.Key], r.ID)
		}
	}

	data := make(map[uuid.UUID][]map[string]any)
	for category, ids := range byCategory {
		table := linkTables[category]
		// resource_id is cast to text so the dynamic scan below can key
		// rows without depending on the driver's uuid mapping.
		q := fmt.Sprintf(`SELECT resource_id::text AS rid, * FROM %s WHERE resource_id = ANY($1) ORDER BY data_link_id`, table)

		rows, err := s.pool.Query(ctx, q, ids)
		if err != nil {
			return nil, mapErr(err)
		}

		cols := rows.FieldDescriptions()
		vals := make([]any, len(cols))
		for i := range vals {
			vals[i] = new(any)
		}
		for rows.Next() {
			if err := rows.Scan(vals...); err != nil {
				rows.Close()
				return nil, mapErr(err)
			}
			var rid uuid.UUID
			row := make(map[string]any, len(cols)-1)
			for i, c := range cols {
				if c.Name == "rid" {
					id, err := uuid.Parse((*(vals[i].(*any))).(string))
					if err != nil {
						rows.Close()
						return nil, err
					}
					rid = id
					continue
				}
				row[c.Name] = *(vals[i].(*any))
			}
			data[rid] = append(data[rid], row)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}

	out := make([]repository.Resource, len(resources))
	for i, r := range resources {
		r.Data = data[r.ID]
		out[i] = r
	}
	return out, nil
}
