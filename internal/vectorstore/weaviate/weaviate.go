// Package weaviate stores transcript chunks in a Weaviate class with
// client-supplied vectors (Vectorizer "none").
package weaviate

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	filters "github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	gql "github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/model"
	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/vectorstore"
)

// DefaultClass is the Weaviate class holding transcript chunks.
const DefaultClass = "TranscriptChunk"

// batchDeleteLimit mirrors Weaviate's default QUERY_MAXIMUM_RESULTS.
const batchDeleteLimit = 10000

var chunkNamespace = uuid.MustParse("6f1b6c2e-7a55-4c1e-9a49-2f0e8e6c1d3b")

// Store implements vectorstore.Store on Weaviate.
type Store struct {
	client  *weaviate.Client
	class   string
	metric  vectorstore.Metric
	dim     atomic.Int64
	log     zerolog.Logger
	seqMu   sync.Mutex
	lastSeq int64
}

// New constructs a Store for the Weaviate instance at host (host:port, no scheme).
func New(host, class string, opts vectorstore.Options, log zerolog.Logger) (*Store, error) {
	if host == "" {
		return nil, fmt.Errorf("weaviate host not configured")
	}
	cl, err := weaviate.NewClient(weaviate.Config{Scheme: "http", Host: host})
	if err != nil {
		return nil, err
	}
	if class == "" {
		class = DefaultClass
	}
	s := &Store{client: cl, class: class, metric: opts.Metric, log: log}
	if s.metric == "" {
		s.metric = vectorstore.Cosine
	}
	s.dim.Store(int64(opts.Dimension))
	return s, nil
}

func (s *Store) Dimension() int             { return int(s.dim.Load()) }
func (s *Store) Metric() vectorstore.Metric { return s.metric }
func (s *Store) Close() error               { return nil }

// HealthPing implements health.HealthPinger using the readiness endpoint.
func (s *Store) HealthPing(ctx context.Context) error {
	ok, err := s.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("weaviate not ready")
	}
	return nil
}

// Bootstrap creates the chunk class when missing and adopts the dimension of
// already stored vectors.
func (s *Store) Bootstrap(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	desired := &models.Class{
		Class:             s.class,
		Vectorizer:        "none",
		VectorIndexConfig: map[string]interface{}{"distance": distanceName(s.metric)},
		Properties: []*models.Property{
			{Name: "chunkId", DataType: []string{"text"}, Tokenization: "field"},
			{Name: "transcriptId", DataType: []string{"text"}, Tokenization: "field"},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "startOffset", DataType: []string{"int"}},
			{Name: "endOffset", DataType: []string{"int"}},
			{Name: "text", DataType: []string{"text"}},
			{Name: "metadata", DataType: []string{"text"}},
			{Name: "seq", DataType: []string{"int"}},
		},
	}
	ex, err := s.client.Schema().ClassGetter().WithClassName(s.class).Do(cctx)
	if err != nil || ex == nil {
		if err := s.client.Schema().ClassCreator().WithClass(desired).Do(cctx); err != nil {
			return fmt.Errorf("create class %s: %w", s.class, err)
		}
		return nil
	}
	return s.adoptStoredDimension(cctx)
}

func (s *Store) adoptStoredDimension(ctx context.Context) error {
	resp, err := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithLimit(1).
		WithFields(gql.Field{Name: "_additional", Fields: []gql.Field{{Name: "vector"}}}).
		Do(ctx)
	if err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("weaviate graphql: %s", formatGraphQLErrors(resp.Errors))
	}
	items := s.items(resp.Data)
	if len(items) == 0 {
		return nil
	}
	add, _ := items[0]["_additional"].(map[string]interface{})
	vec, _ := add["vector"].([]interface{})
	if len(vec) == 0 {
		return nil
	}
	if want := s.dim.Load(); want != 0 && want != int64(len(vec)) {
		return model.DimensionMismatchError{Want: len(vec), Got: int(want)}
	}
	s.dim.Store(int64(len(vec)))
	return nil
}

// Upsert creates or replaces the object for chunk. Replacement keeps the
// original insertion sequence.
func (s *Store) Upsert(ctx context.Context, chunk model.Chunk, embedding []float32) error {
	if err := vectorstore.CheckDimension(&s.dim, embedding); err != nil {
		return err
	}
	meta, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return err
	}
	props := map[string]interface{}{
		"chunkId":      chunk.ID,
		"transcriptId": chunk.TranscriptID,
		"chunkIndex":   chunk.Index,
		"startOffset":  chunk.Start,
		"endOffset":    chunk.End,
		"text":         chunk.Text,
		"metadata":     string(meta),
	}
	id := objectID(chunk.ID)

	exists, err := s.client.Data().Checker().WithClassName(s.class).WithID(id).Do(ctx)
	if err != nil {
		return fmt.Errorf("check %s: %w", chunk.ID, err)
	}
	if exists {
		return s.client.Data().Updater().
			WithClassName(s.class).
			WithID(id).
			WithProperties(props).
			WithVector(embedding).
			WithMerge().
			Do(ctx)
	}
	props["seq"] = s.nextSeq()
	_, err = s.client.Data().Creator().
		WithClassName(s.class).
		WithID(id).
		WithProperties(props).
		WithVector(embedding).
		Do(ctx)
	return err
}

// Query runs a nearVector search. When the last fetched hit ties with the
// k-th best score the fetch is widened, so ties at the cut-off are resolved
// by insertion order rather than by Weaviate's internal ordering.
func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter *vectorstore.Filter) ([]model.RetrievalRecord, error) {
	if err := vectorstore.CheckQueryDimension(s.Dimension(), vector); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []model.RetrievalRecord{}, nil
	}

	limit := topK + 1
	for {
		cands, err := s.search(ctx, vector, limit, filter)
		if err != nil {
			return nil, err
		}
		if len(cands) < limit || !tieAtCutoff(cands, topK) {
			return vectorstore.Rank(cands, topK), nil
		}
		limit *= 2
	}
}

// tieAtCutoff reports whether the weakest fetched candidate scores the same as
// the k-th best one. cands arrive in Weaviate's distance order and hold more
// than topK entries.
func tieAtCutoff(cands []vectorstore.Candidate, topK int) bool {
	return cands[len(cands)-1].Record.Score >= cands[topK-1].Record.Score
}

func (s *Store) search(ctx context.Context, vector []float32, limit int, filter *vectorstore.Filter) ([]vectorstore.Candidate, error) {
	req := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithNearVector(s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)).
		WithLimit(limit).
		WithFields(
			gql.Field{Name: "chunkId"},
			gql.Field{Name: "transcriptId"},
			gql.Field{Name: "chunkIndex"},
			gql.Field{Name: "startOffset"},
			gql.Field{Name: "endOffset"},
			gql.Field{Name: "text"},
			gql.Field{Name: "metadata"},
			gql.Field{Name: "seq"},
			gql.Field{Name: "_additional", Fields: []gql.Field{{Name: "distance"}}},
		)
	if filter != nil && filter.TranscriptID != "" {
		req = req.WithWhere(transcriptWhere(filter.TranscriptID))
	}

	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %s", formatGraphQLErrors(resp.Errors))
	}

	items := s.items(resp.Data)
	out := make([]vectorstore.Candidate, 0, len(items))
	for _, m := range items {
		c := model.Chunk{
			ID:           str(m["chunkId"]),
			TranscriptID: str(m["transcriptId"]),
			Index:        int(num(m["chunkIndex"])),
			Start:        int(num(m["startOffset"])),
			End:          int(num(m["endOffset"])),
			Text:         str(m["text"]),
		}
		if raw := str(m["metadata"]); raw != "" && raw != "null" {
			_ = json.Unmarshal([]byte(raw), &c.Metadata)
		}
		var distance float64
		if add, ok := m["_additional"].(map[string]interface{}); ok {
			distance = num(add["distance"])
		}
		out = append(out, vectorstore.Candidate{
			Record: model.RetrievalRecord{Chunk: c, Score: s.scoreFromDistance(distance)},
			Seq:    int64(num(m["seq"])),
		})
	}
	s.log.Debug().Str("class", s.class).Int("limit", limit).Int("hits", len(out)).Msg("weaviate nearVector search")
	return out, nil
}

// DeleteTranscript removes every object of the transcript with batch deletes.
func (s *Store) DeleteTranscript(ctx context.Context, transcriptID string) error {
	for {
		resp, err := s.client.Batch().ObjectsBatchDeleter().
			WithClassName(s.class).
			WithOutput("minimal").
			WithWhere(transcriptWhere(transcriptID)).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("delete transcript %s: %w", transcriptID, err)
		}
		if resp == nil || resp.Results == nil || resp.Results.Matches < batchDeleteLimit {
			return nil
		}
	}
}

func (s *Store) items(data map[string]models.JSONObject) []map[string]interface{} {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := get[s.class].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

func (s *Store) scoreFromDistance(d float64) float64 {
	if s.metric == vectorstore.Dot {
		return -d
	}
	return 1 - d
}

// nextSeq returns a strictly increasing microsecond timestamp; it stays exact
// through Weaviate's float64 JSON numbers.
func (s *Store) nextSeq() int64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	now := time.Now().UnixMicro()
	if now <= s.lastSeq {
		now = s.lastSeq + 1
	}
	s.lastSeq = now
	return now
}

func transcriptWhere(transcriptID string) *filters.WhereBuilder {
	return filters.Where().
		WithPath([]string{"transcriptId"}).
		WithOperator(filters.Equal).
		WithValueText(transcriptID)
}

func objectID(chunkID string) string {
	return uuid.NewSHA1(chunkNamespace, []byte(chunkID)).String()
}

func distanceName(m vectorstore.Metric) string {
	if m == vectorstore.Dot {
		return "dot"
	}
	return "cosine"
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func num(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

func formatGraphQLErrors(errs []*models.GraphQLError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if e != nil {
			msgs = append(msgs, e.Message)
		}
	}
	return strings.Join(msgs, "; ")
}
