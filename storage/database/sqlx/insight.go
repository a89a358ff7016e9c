package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/insight"
)

var insightColumns = []string{
	"id", "user_id", "task_id", "insight_type", "title", "content", "metadata", "confidence_score",
	"created_at", "updated_at", "archived_at",
}

type insightRow struct {
	ID              string       `db:"id"`
	UserID          string       `db:"user_id"`
	TaskID          null.String  `db:"task_id"`
	Type            string       `db:"insight_type"`
	Title           string       `db:"title"`
	Content         string       `db:"content"`
	Metadata        null.String  `db:"metadata"`
	ConfidenceScore null.Float64 `db:"confidence_score"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
	ArchivedAt      null.Time    `db:"archived_at"`
}

func (row insightRow) toInsight() (insight.Insight, error) {
	if !json.Valid([]byte(row.Content)) {
		return insight.Insight{}, core.NewDecodeError("ai_insights.content", errors.New("invalid JSON"))
	}
	var meta insight.Metadata
	if row.Metadata.Valid {
		if err := json.Unmarshal([]byte(row.Metadata.String), &meta); err != nil {
			return insight.Insight{}, core.NewDecodeError("ai_insights.metadata", err)
		}
	}
	return insight.Insight{
		ID:              row.ID,
		UserID:          row.UserID,
		TaskID:          row.TaskID.Ptr(),
		Type:            insight.Type(row.Type),
		Title:           row.Title,
		Content:         json.RawMessage(row.Content),
		Metadata:        meta,
		ConfidenceScore: row.ConfidenceScore.Ptr(),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
		ArchivedAt:      row.ArchivedAt.Ptr(),
	}, nil
}

type insightRepository struct {
	repository
}

var _ insight.Repository = (*insightRepository)(nil) // interface compliance check

func NewInsightRepository(exec core.DBExecutor) *insightRepository {
	return &insightRepository{repository{exec: exec}}
}

func (repo insightRepository) CreateInsight(ctx context.Context, ins insight.Insight, exec ...core.DBExecutor) (insight.Insight, error) {
	meta, err := json.Marshal(ins.Metadata)
	if err != nil {
		return insight.Insight{}, errors.Wrap(err, "encoding insight metadata")
	}
	ins.ID = uuid.New().String()

	qb := psql.Insert("ai_insights").
		Columns(insightColumns...).
		Values(
			ins.ID, ins.UserID, null.StringFromPtr(ins.TaskID), string(ins.Type), ins.Title, string(ins.Content),
			string(meta), null.Float64FromPtr(ins.ConfidenceScore), ins.CreatedAt, ins.UpdatedAt,
			null.TimeFromPtr(ins.ArchivedAt),
		)
	if _, err = execute(ctx, repo.getExec(exec), qb); err != nil {
		return insight.Insight{}, errors.Wrap(err, "inserting insight")
	}
	return ins, nil
}

func (repo insightRepository) QueryInsights(
	ctx context.Context,
	userID string,
	filter insight.QueryFilter,
	exec ...core.DBExecutor,
) ([]insight.Insight, error) {
	qb := psql.Select(insightColumns...).
		From("ai_insights").
		Where(sq.Eq{"user_id": userID, "archived_at": nil}).
		OrderBy("created_at DESC", "id").
		Limit(uint64(filter.Limit))
	if filter.Type != "" {
		qb = qb.Where(sq.Eq{"insight_type": string(filter.Type)})
	}

	var rows []insightRow
	if err := selectAll(ctx, repo.getExec(exec), qb, &rows); err != nil {
		return nil, errors.Wrap(err, "querying insights")
	}
	insights := make([]insight.Insight, 0, len(rows))
	for _, row := range rows {
		ins, err := row.toInsight()
		if err != nil {
			return nil, err
		}
		insights = append(insights, ins)
	}
	return insights, nil
}
