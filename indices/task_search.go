package indices

import (
	"encoding/json"
	"fmt"
	"worksync/client/es"
	"worksync/domain"
	"worksync/domain/namespace"
	"worksync/persistence"
	"worksync/session"

	"github.com/fundwit/go-commons/types"
)

const MaxSearchResults = 200

var (
	SearchTasksFunc = SearchTasks
)

type TaskSearchQuery struct {
	Keyword string            `form:"q" binding:"required,lte=200"`
	Status  domain.TaskStatus `form:"status"`
}

// SearchTasks matches title and description of tasks in the projects visible to the session user.
// A title match on the database is used when search is disabled.
func SearchTasks(q *TaskSearchQuery, s *session.Session) ([]TaskDocument, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown task status '%s'", domain.ErrInvalidArgument, q.Status)
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	visible, err := namespace.VisibleProjectIDs(db, s)
	if err != nil {
		return nil, err
	}
	if len(visible) == 0 {
		return []TaskDocument{}, nil
	}

	if !es.Enabled() {
		return searchTasksInDatabase(q, visible, s)
	}

	filters := []es.H{{"terms": es.H{"projectId": visible}}}
	if q.Status != "" {
		filters = append(filters, es.H{"term": es.H{"status": q.Status}})
	}
	must := es.H{"multi_match": es.H{"query": q.Keyword, "fields": []string{"title^2", "description"}, "operator": "AND"}}
	query := es.H{
		"size":  MaxSearchResults,
		"query": es.H{"bool": es.H{"must": must, "filter": filters}},
	}

	r, err := es.SearchFunc(s.Ctx(), TaskIndexName, query)
	if err != nil {
		return nil, err
	}
	docs := make([]TaskDocument, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := TaskDocument{}
		if err := json.Unmarshal([]byte(hit.Source), &doc); err != nil {
			return nil, fmt.Errorf("decode task document %s: %w", hit.Id, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func searchTasksInDatabase(q *TaskSearchQuery, visible []types.ID, s *session.Session) ([]TaskDocument, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Ctx())
	query := db.Where("title LIKE ? "+persistence.LikeEscapeClause+" AND project_id IN (?)", "%"+persistence.EscapeLike(q.Keyword)+"%", visible)
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	var tasks []domain.Task
	if err := query.Order("id ASC").Limit(MaxSearchResults).Find(&tasks).Error; err != nil {
		return nil, err
	}
	names, err := namespace.QueryProjectNames(db, projectIdsOf(tasks))
	if err != nil {
		return nil, err
	}
	docs := make([]TaskDocument, 0, len(tasks))
	for _, t := range tasks {
		docs = append(docs, TaskDocument{Task: t, ProjectName: names[t.ProjectID]})
	}
	return docs, nil
}
