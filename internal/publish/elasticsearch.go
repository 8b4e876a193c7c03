// internal/publish/elasticsearch.go
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"maginhawa-directory/internal/common/database"
	stderrors "maginhawa-directory/internal/common/errors"
	"maginhawa-directory/internal/common/logger"
	"maginhawa-directory/internal/index"
)

// SearchPublisher pushes index projections into Elasticsearch so the website
// can serve full-text search. Each run is a full reindex, mirroring the
// full-overwrite semantics of the JSON artifacts.
type SearchPublisher struct {
	es        *database.ElasticsearchClient
	indexName string
	logger    logger.Logger
}

func NewSearchPublisher(es *database.ElasticsearchClient, indexName string, log logger.Logger) *SearchPublisher {
	return &SearchPublisher{
		es:        es,
		indexName: indexName,
		logger:    log.WithFields(map[string]interface{}{"index": indexName}),
	}
}

// Publish bulk-indexes every entry, keyed by slug so re-runs replace
// documents instead of duplicating them.
func (p *SearchPublisher) Publish(ctx context.Context, idx *index.Index) error {
	if len(idx.Places) == 0 {
		return stderrors.NewSearchPublishFailedError(p.indexName, fmt.Errorf("refusing to publish an empty index"))
	}

	var buf bytes.Buffer
	for _, entry := range idx.Places {
		meta := map[string]map[string]string{
			"index": {"_index": p.indexName, "_id": entry.Slug},
		}
		metaLine, err := json.Marshal(meta)
		if err != nil {
			return stderrors.NewSearchPublishFailedError(p.indexName, err)
		}
		docLine, err := json.Marshal(entry)
		if err != nil {
			return stderrors.NewSearchPublishFailedError(p.indexName, err)
		}
		buf.Write(metaLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}

	res, err := p.es.Client.Bulk(
		bytes.NewReader(buf.Bytes()),
		p.es.Client.Bulk.WithContext(ctx),
		p.es.Client.Bulk.WithIndex(p.indexName),
	)
	if err != nil {
		return stderrors.NewSearchPublishFailedError(p.indexName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return stderrors.NewSearchPublishFailedError(p.indexName, fmt.Errorf("bulk request error: %s", res.Status()))
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return stderrors.NewSearchPublishFailedError(p.indexName, err)
	}
	if bulkResp.Errors {
		return stderrors.NewSearchPublishFailedError(p.indexName, fmt.Errorf("bulk response reported item errors"))
	}

	p.logger.Info("search index published", map[string]interface{}{
		"documents": len(idx.Places),
	})
	return nil
}
