package sweep

import "context"

// deleteBatchSize bounds the number of ids per delete statement. Large
// orphan sets are split into fixed-size chunks so no single statement
// carries an unbounded id list.
const deleteBatchSize = 100

// deleteInBatches deletes the given ids from table in chunks of at most
// deleteBatchSize. Each chunk is issued as its own atomic statement; a
// chunk failure stops the remaining chunks and propagates, with the
// rows deleted so far reflected in the returned count. Earlier chunks
// stay deleted, which is safe: a later run re-detects whatever is left.
func (s *Sweeper) deleteInBatches(ctx context.Context, table, idColumn string, ids []string) (int64, error) {
	var deleted int64
	for start := 0; start < len(ids); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		affected, err := s.store.DeleteRows(ctx, table, idColumn, ids[start:end])
		deleted += affected
		if err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}
