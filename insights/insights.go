// Package insights serves the dashboard's AI pros/cons summary with a
// 24h content-addressed cache. The cache holds one entry per user:
// lookups must match the current portfolio hash, upserts overwrite by
// user id alone, so a stale entry under an old hash is bypassed and
// then replaced.
package insights

import (
	"context"
	"net/http"
	"sync"
	"time"

	"sofa/agi"
	"sofa/globals"
	"sofa/structs"
	"sofa/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

const cacheTTL = 24 * time.Hour

type store interface {
	OwnedEvents(ctx context.Context, userID string) ([]agi.EventProjection, error)
	Entry(ctx context.Context, userID string) (*structs.InsightEntry, error)
	Upsert(ctx context.Context, entry structs.InsightEntry) error
}

type Service struct {
	store store
	gen   agi.Generator
	now   func() time.Time
}

func NewService(s store, gen agi.Generator) *Service {
	return &Service{store: s, gen: gen, now: time.Now}
}

// GetInsights returns the cached portfolio analysis, regenerating it
// when the portfolio changed or the entry aged out. Generator failures
// degrade to an empty result instead of failing the request.
func (svc *Service) GetInsights(ctx context.Context, userID string) (agi.Insights, error) {
	events, err := svc.store.OwnedEvents(ctx, userID)
	if err != nil {
		return agi.Insights{}, err
	}
	if len(events) == 0 {
		return emptyInsights(), nil
	}

	hash := PortfolioHash(events)

	entry, err := svc.store.Entry(ctx, userID)
	if err != nil {
		return agi.Insights{}, err
	}
	if entry != nil && entry.Hash == hash && svc.now().Sub(entry.LastUpdated) < cacheTTL {
		return agi.Insights{Pros: entry.Pros, Cons: entry.Cons}, nil
	}

	generated, err := svc.gen.GenerateInsights(events)
	if err != nil {
		logrus.Errorf("insight generation failed for user %s: %v", userID, err)
		return emptyInsights(), nil
	}

	fresh := structs.InsightEntry{
		UserID:      userID,
		Hash:        hash,
		Pros:        generated.Pros,
		Cons:        generated.Cons,
		LastUpdated: svc.now(),
	}
	if err := svc.store.Upsert(ctx, fresh); err != nil {
		logrus.Errorf("insight cache upsert failed for user %s: %v", userID, err)
	}

	return generated, nil
}

func emptyInsights() agi.Insights {
	return agi.Insights{Pros: []string{}, Cons: []string{}}
}

var (
	defaultService *Service
	initService    sync.Once
)

// service is called from handler goroutines, so construction of the
// shared instance must happen exactly once.
func service() *Service {
	initService.Do(func() {
		defaultService = NewService(newMongoStore(), agi.NewClient())
	})
	return defaultService
}

func GetInsights(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("userid")

	requestingUserID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		http.Error(w, "Invalid user", http.StatusUnauthorized)
		return
	}
	if requestingUserID != userID {
		http.Error(w, "Unauthorized to view these insights", http.StatusForbidden)
		return
	}

	result, err := service().GetInsights(r.Context(), userID)
	if err != nil {
		logrus.Errorf("error fetching insights for user %s: %v", userID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, result)
}
