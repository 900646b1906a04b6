package service

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/repository"
	apperrors "github.com/zezman/directory/pkg/errors"
	"github.com/zezman/directory/pkg/pagination"
)

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

type pairKey struct{ a, b string }

// memDB backs every fake repository. Refresh methods recount from the
// source maps the same way the SQL statements do.
type memDB struct {
	mu sync.Mutex

	businesses map[string]*domain.Business
	reviews    map[string]*domain.Review
	favorites  map[pairKey]*domain.Favorite
	categories map[string]*domain.Category
	services   map[string]*domain.Service
	votes      map[pairKey]bool
	reports    map[pairKey]string

	ratingWrites int
	histogramErr error
}

func newMemDB() *memDB {
	return &memDB{
		businesses: make(map[string]*domain.Business),
		reviews:    make(map[string]*domain.Review),
		favorites:  make(map[pairKey]*domain.Favorite),
		categories: make(map[string]*domain.Category),
		services:   make(map[string]*domain.Service),
		votes:      make(map[pairKey]bool),
		reports:    make(map[pairKey]string),
	}
}

func cloneBusiness(b *domain.Business) *domain.Business {
	c := *b
	c.Services = slices.Clone(b.Services)
	c.Tags = slices.Clone(b.Tags)
	c.OpeningHours = slices.Clone(b.OpeningHours)
	return &c
}

func cloneReview(r *domain.Review) *domain.Review {
	c := *r
	return &c
}

func paginate[T any](items []T, page pagination.Params) []T {
	if page.Offset >= len(items) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}

// --- businesses ---

type fakeBusinessRepo struct{ db *memDB }

var _ repository.BusinessRepository = fakeBusinessRepo{}

func (f fakeBusinessRepo) Create(_ context.Context, b *domain.Business) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.businesses[b.ID] = cloneBusiness(b)
	return nil
}

func (f fakeBusinessRepo) GetByID(_ context.Context, id string) (*domain.Business, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.businesses[id]
	if !ok {
		return nil, apperrors.NotFound("business", id)
	}
	return cloneBusiness(b), nil
}

func (f fakeBusinessRepo) Update(_ context.Context, b *domain.Business) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cur, ok := f.db.businesses[b.ID]
	if !ok || !cur.Active {
		return apperrors.NotFound("business", b.ID)
	}
	next := cloneBusiness(b)
	// Aggregates are never written by Update.
	next.Rating, next.TotalRatings, next.Distribution = cur.Rating, cur.TotalRatings, cur.Distribution
	next.FavoriteCount, next.ReviewCount, next.ViewCount = cur.FavoriteCount, cur.ReviewCount, cur.ViewCount
	f.db.businesses[b.ID] = next
	return nil
}

func (f fakeBusinessRepo) SoftDelete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.businesses[id]
	if !ok || !b.Active {
		return apperrors.NotFound("business", id)
	}
	b.Active = false
	return nil
}

func (f fakeBusinessRepo) IncrementViewCount(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.businesses[id]
	if !ok {
		return apperrors.NotFound("business", id)
	}
	b.ViewCount++
	return nil
}

func (f fakeBusinessRepo) CountByOwner(_ context.Context, ownerID string) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	n := 0
	for _, b := range f.db.businesses {
		if b.Active && b.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (f fakeBusinessRepo) filter(keep func(*domain.Business) bool) []domain.Business {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []domain.Business
	for _, b := range f.db.businesses {
		if keep(b) {
			out = append(out, *cloneBusiness(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f fakeBusinessRepo) ListByOwner(_ context.Context, ownerID string, page pagination.Params) ([]domain.Business, int, error) {
	all := f.filter(func(b *domain.Business) bool { return b.Active && b.OwnerID == ownerID })
	return paginate(all, page), len(all), nil
}

func (f fakeBusinessRepo) ListByStatus(_ context.Context, status domain.ModerationStatus, page pagination.Params) ([]domain.Business, int, error) {
	all := f.filter(func(b *domain.Business) bool { return b.Active && b.Status == status })
	return paginate(all, page), len(all), nil
}

func (f fakeBusinessRepo) ListFeatured(_ context.Context, limit int) ([]domain.Business, error) {
	all := f.filter(func(b *domain.Business) bool { return b.Visible() && b.Featured })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f fakeBusinessRepo) ListPopular(_ context.Context, limit int) ([]domain.Business, error) {
	all := f.filter(func(b *domain.Business) bool { return b.Visible() })
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].FavoriteCount != all[j].FavoriteCount {
			return all[i].FavoriteCount > all[j].FavoriteCount
		}
		return all[i].Rating > all[j].Rating
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f fakeBusinessRepo) SetStatus(_ context.Context, id string, status domain.ModerationStatus, actorID string, at time.Time) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.businesses[id]
	if !ok {
		return apperrors.NotFound("business", id)
	}
	b.Status = status
	if status == domain.StatusApproved {
		b.ApprovedAt, b.ApprovedBy = &at, &actorID
	} else {
		b.ApprovedAt, b.ApprovedBy = nil, nil
	}
	return nil
}

func (f fakeBusinessRepo) Search(_ context.Context, c *domain.SearchCriteria) ([]domain.SearchHit, int, error) {
	all := f.filter(func(b *domain.Business) bool {
		if !b.Visible() {
			return false
		}
		if c.CategoryID != "" && b.CategoryID != c.CategoryID {
			return false
		}
		return b.Rating >= c.MinRating
	})
	hits := make([]domain.SearchHit, 0, len(all))
	for _, b := range paginate(all, c.Page) {
		hits = append(hits, domain.SearchHit{Business: b})
	}
	return hits, len(all), nil
}

func (f fakeBusinessRepo) UpdateRating(_ context.Context, id string, s domain.RatingSummary) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.businesses[id]
	if !ok {
		return apperrors.NotFound("business", id)
	}
	b.ApplyRating(s)
	f.db.ratingWrites++
	return nil
}

func (f fakeBusinessRepo) RefreshFavoriteCount(_ context.Context, id string) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.businesses[id]
	if !ok {
		return 0, apperrors.NotFound("business", id)
	}
	n := 0
	for k := range f.db.favorites {
		if k.b == id {
			n++
		}
	}
	b.FavoriteCount = n
	return n, nil
}

func (f fakeBusinessRepo) RefreshReviewCount(_ context.Context, id string) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.businesses[id]
	if !ok {
		return 0, apperrors.NotFound("business", id)
	}
	n := 0
	for _, r := range f.db.reviews {
		if r.BusinessID == id && r.Approved() {
			n++
		}
	}
	b.ReviewCount = n
	return n, nil
}

// --- reviews ---

type fakeReviewRepo struct{ db *memDB }

var _ repository.ReviewRepository = fakeReviewRepo{}

func (f fakeReviewRepo) Create(_ context.Context, r *domain.Review) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.businesses[r.BusinessID]; !ok {
		return apperrors.NotFound("business", r.BusinessID)
	}
	for _, existing := range f.db.reviews {
		if existing.UserID == r.UserID && existing.BusinessID == r.BusinessID {
			return apperrors.Conflict("you have already reviewed this business")
		}
	}
	f.db.reviews[r.ID] = cloneReview(r)
	return nil
}

func (f fakeReviewRepo) GetByID(_ context.Context, id string) (*domain.Review, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.reviews[id]
	if !ok {
		return nil, apperrors.NotFound("review", id)
	}
	return cloneReview(r), nil
}

func (f fakeReviewRepo) Update(_ context.Context, r *domain.Review) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cur, ok := f.db.reviews[r.ID]
	if !ok {
		return apperrors.NotFound("review", r.ID)
	}
	cur.Rating, cur.Comment, cur.Status = r.Rating, r.Comment, r.Status
	return nil
}

func (f fakeReviewRepo) Delete(_ context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.reviews[id]; !ok {
		return apperrors.NotFound("review", id)
	}
	delete(f.db.reviews, id)
	return nil
}

func (f fakeReviewRepo) filter(keep func(*domain.Review) bool) []domain.Review {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []domain.Review
	for _, r := range f.db.reviews {
		if keep(r) {
			out = append(out, *cloneReview(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f fakeReviewRepo) ListByBusiness(_ context.Context, businessID string, _ domain.ReviewSort, page pagination.Params) ([]domain.Review, int, error) {
	all := f.filter(func(r *domain.Review) bool { return r.BusinessID == businessID && r.Approved() })
	return paginate(all, page), len(all), nil
}

func (f fakeReviewRepo) ListByUser(_ context.Context, userID string, page pagination.Params) ([]domain.Review, int, error) {
	all := f.filter(func(r *domain.Review) bool { return r.UserID == userID })
	return paginate(all, page), len(all), nil
}

func (f fakeReviewRepo) ListByStatus(_ context.Context, status domain.ModerationStatus, page pagination.Params) ([]domain.Review, int, error) {
	all := f.filter(func(r *domain.Review) bool { return r.Status == status })
	return paginate(all, page), len(all), nil
}

func (f fakeReviewRepo) SetModeration(_ context.Context, id string, status domain.ModerationStatus, notes, actorID string, at time.Time) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.reviews[id]
	if !ok {
		return apperrors.NotFound("review", id)
	}
	r.Status, r.ModerationNotes, r.ModeratedBy, r.ModeratedAt = status, notes, &actorID, &at
	return nil
}

func (f fakeReviewRepo) SetResponse(_ context.Context, id string, resp domain.BusinessResponse) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.reviews[id]
	if !ok {
		return apperrors.NotFound("review", id)
	}
	r.Response = &resp
	return nil
}

func (f fakeReviewRepo) AddReport(_ context.Context, reviewID, userID, reason, details string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.reviews[reviewID]
	if !ok {
		return apperrors.NotFound("review", reviewID)
	}
	key := pairKey{reviewID, userID}
	if _, dup := f.db.reports[key]; dup {
		return apperrors.Conflict("you have already reported this review")
	}
	f.db.reports[key] = reason
	r.Reported, r.ReportReason, r.ReportDetails = true, &reason, details
	return nil
}

func (f fakeReviewRepo) Vote(_ context.Context, reviewID, userID string, helpful bool) (domain.VoteTally, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.reviews[reviewID]
	if !ok {
		return domain.VoteTally{}, apperrors.NotFound("review", reviewID)
	}
	f.db.votes[pairKey{reviewID, userID}] = helpful

	var tally domain.VoteTally
	for k, h := range f.db.votes {
		if k.a != reviewID {
			continue
		}
		tally.Total++
		if h {
			tally.Helpful++
		}
	}
	r.HelpfulVotes, r.TotalVotes = tally.Helpful, tally.Total
	return tally, nil
}

func (f fakeReviewRepo) ApprovedHistogram(_ context.Context, businessID string) (domain.Histogram, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var h domain.Histogram
	if f.db.histogramErr != nil {
		return h, f.db.histogramErr
	}
	for _, r := range f.db.reviews {
		if r.BusinessID == businessID && r.Approved() {
			h[r.Rating-1]++
		}
	}
	return h, nil
}

// --- favorites ---

type fakeFavoriteRepo struct{ db *memDB }

var _ repository.FavoriteRepository = fakeFavoriteRepo{}

func (f fakeFavoriteRepo) Create(_ context.Context, fav *domain.Favorite) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	key := pairKey{fav.UserID, fav.BusinessID}
	if _, dup := f.db.favorites[key]; dup {
		return apperrors.Conflict("business is already in favorites")
	}
	c := *fav
	f.db.favorites[key] = &c
	return nil
}

func (f fakeFavoriteRepo) Get(_ context.Context, userID, businessID string) (*domain.Favorite, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	fav, ok := f.db.favorites[pairKey{userID, businessID}]
	if !ok {
		return nil, apperrors.NotFound("favorite", businessID)
	}
	c := *fav
	return &c, nil
}

func (f fakeFavoriteRepo) UpdateNotes(_ context.Context, userID, businessID, notes string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	fav, ok := f.db.favorites[pairKey{userID, businessID}]
	if !ok {
		return apperrors.NotFound("favorite", businessID)
	}
	fav.Notes = notes
	return nil
}

func (f fakeFavoriteRepo) Delete(_ context.Context, userID, businessID string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	key := pairKey{userID, businessID}
	if _, ok := f.db.favorites[key]; !ok {
		return apperrors.NotFound("favorite", businessID)
	}
	delete(f.db.favorites, key)
	return nil
}

func (f fakeFavoriteRepo) ListByUser(_ context.Context, userID string, page pagination.Params) ([]domain.Favorite, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var all []domain.Favorite
	for k, fav := range f.db.favorites {
		if k.a == userID {
			all = append(all, *fav)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].BusinessID < all[j].BusinessID })
	return paginate(all, page), len(all), nil
}

// --- categories, services, stats ---

type fakeCategoryRepo struct{ db *memDB }

var _ repository.CategoryRepository = fakeCategoryRepo{}

func (f fakeCategoryRepo) Create(_ context.Context, c *domain.Category) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.categories {
		if existing.Slug == c.Slug {
			return apperrors.AlreadyExists("category", "slug", c.Slug)
		}
	}
	cc := *c
	f.db.categories[c.ID] = &cc
	return nil
}

func (f fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.categories[id]
	if !ok {
		return nil, apperrors.NotFound("category", id)
	}
	cc := *c
	return &cc, nil
}

func (f fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []domain.Category{}
	for _, c := range f.db.categories {
		if c.Active {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f fakeCategoryRepo) RefreshBusinessCount(_ context.Context, id string) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.categories[id]
	if !ok {
		return 0, apperrors.NotFound("category", id)
	}
	n := 0
	for _, b := range f.db.businesses {
		if b.CategoryID == id && b.Visible() {
			n++
		}
	}
	c.BusinessCount = n
	return n, nil
}

type fakeServiceRepo struct{ db *memDB }

var _ repository.ServiceRepository = fakeServiceRepo{}

func (f fakeServiceRepo) Create(_ context.Context, s *domain.Service) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cc := *s
	f.db.services[s.ID] = &cc
	return nil
}

func (f fakeServiceRepo) GetByID(_ context.Context, id string) (*domain.Service, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.services[id]
	if !ok {
		return nil, apperrors.NotFound("service", id)
	}
	cc := *s
	return &cc, nil
}

func (f fakeServiceRepo) List(_ context.Context, categoryID *string) ([]domain.Service, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []domain.Service{}
	for _, s := range f.db.services {
		if !s.Active {
			continue
		}
		if categoryID != nil && (s.CategoryID == nil || *s.CategoryID != *categoryID) {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f fakeServiceRepo) RefreshBusinessCount(_ context.Context, id string) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.services[id]
	if !ok {
		return 0, apperrors.NotFound("service", id)
	}
	n := 0
	for _, b := range f.db.businesses {
		if b.Visible() && slices.Contains(b.ServiceIDs(), id) {
			n++
		}
	}
	s.BusinessCount = n
	return n, nil
}

type fakeStatsRepo struct{ db *memDB }

func (f fakeStatsRepo) Dashboard(_ context.Context) (*domain.DashboardStats, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var s domain.DashboardStats
	for _, b := range f.db.businesses {
		s.TotalBusinesses++
		if !b.Active {
			continue
		}
		s.ActiveBusinesses++
		switch b.Status {
		case domain.StatusPending:
			s.PendingBusinesses++
		case domain.StatusApproved:
			s.ApprovedBusinesses++
		case domain.StatusRejected:
			s.RejectedBusinesses++
		}
	}
	for _, r := range f.db.reviews {
		s.TotalReviews++
		if r.Status == domain.StatusPending {
			s.PendingReviews++
		}
		if r.Reported {
			s.ReportedReviews++
		}
	}
	s.TotalFavorites = len(f.db.favorites)
	s.TotalCategories = len(f.db.categories)
	s.TotalServices = len(f.db.services)
	return &s, nil
}

func (f fakeStatsRepo) ReviewHistogram(_ context.Context) (domain.Histogram, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var (
		h       domain.Histogram
		helpful int
	)
	for _, r := range f.db.reviews {
		if !r.Approved() {
			continue
		}
		if r.Rating >= 1 && r.Rating <= domain.MaxStars {
			h[r.Rating-1]++
		}
		helpful += r.HelpfulVotes
	}
	return h, helpful, nil
}

func (f fakeStatsRepo) FavoriteStats(_ context.Context) (*domain.FavoriteStats, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	users := make(map[string]struct{})
	businesses := make(map[string]struct{})
	for k := range f.db.favorites {
		users[k.a] = struct{}{}
		businesses[k.b] = struct{}{}
	}
	return &domain.FavoriteStats{
		TotalFavorites:   len(f.db.favorites),
		UniqueUsers:      len(users),
		UniqueBusinesses: len(businesses),
	}, nil
}

// ---------------------------------------------------------------------------
// Event publisher mock
// ---------------------------------------------------------------------------

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishBusinessModerated(ctx context.Context, b *domain.Business) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockPublisher) PublishBusinessDeleted(ctx context.Context, b *domain.Business) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockPublisher) PublishRatingUpdated(ctx context.Context, businessID string, s domain.RatingSummary) error {
	return m.Called(ctx, businessID, s).Error(0)
}

func (m *mockPublisher) PublishReviewCreated(ctx context.Context, r *domain.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockPublisher) PublishReviewModerated(ctx context.Context, r *domain.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockPublisher) PublishReviewDeleted(ctx context.Context, r *domain.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockPublisher) PublishFavoriteAdded(ctx context.Context, f *domain.Favorite) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockPublisher) PublishFavoriteRemoved(ctx context.Context, userID, businessID string) error {
	return m.Called(ctx, userID, businessID).Error(0)
}

// allowAllEvents accepts every publish with the given result.
func allowAllEvents(m *mockPublisher, err error) *mockPublisher {
	for _, method := range []string{
		"PublishBusinessModerated", "PublishBusinessDeleted", "PublishReviewCreated",
		"PublishReviewModerated", "PublishReviewDeleted", "PublishFavoriteAdded",
	} {
		m.On(method, mock.Anything, mock.Anything).Return(err).Maybe()
	}
	m.On("PublishRatingUpdated", mock.Anything, mock.Anything, mock.Anything).Return(err).Maybe()
	m.On("PublishFavoriteRemoved", mock.Anything, mock.Anything, mock.Anything).Return(err).Maybe()
	return m
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fixture struct {
	db     *memDB
	events *mockPublisher

	rating     *RatingAggregator
	counts     *CountSynchronizer
	moderation *ModerationGate
	business   *BusinessService
	reviews    *ReviewService
	favorites  *FavoriteService
	catalog    *CatalogService
	admin      *AdminService
	search     *SearchService
}

type fixtureOptions struct {
	autoApprove bool
	maxPerUser  int
	publishErr  error
}

func newFixture(opts fixtureOptions) *fixture {
	db := newMemDB()
	logger := newTestLogger()
	events := allowAllEvents(new(mockPublisher), opts.publishErr)

	businesses := fakeBusinessRepo{db}
	reviews := fakeReviewRepo{db}
	favorites := fakeFavoriteRepo{db}
	categories := fakeCategoryRepo{db}
	services := fakeServiceRepo{db}

	rating := NewRatingAggregator(businesses, reviews, events, logger)
	counts := NewCountSynchronizer(businesses, categories, services, logger)

	return &fixture{
		db:         db,
		events:     events,
		rating:     rating,
		counts:     counts,
		moderation: NewModerationGate(businesses, reviews, rating, counts, events, logger),
		business:   NewBusinessService(businesses, counts, events, logger, BusinessOptions{MaxPerUser: opts.maxPerUser, Location: time.UTC}),
		reviews:    NewReviewService(reviews, businesses, rating, counts, events, logger, ReviewOptions{AutoApprove: opts.autoApprove}),
		favorites:  NewFavoriteService(favorites, businesses, counts, events, logger),
		catalog:    NewCatalogService(categories, services, logger),
		admin: NewAdminService(AdminDeps{
			Stats:      fakeStatsRepo{db},
			Businesses: businesses,
			Reviews:    reviews,
			Categories: categories,
			Services:   services,
			Rating:     rating,
			Counts:     counts,
		}, logger),
		search: NewSearchService(businesses, logger, time.UTC),
	}
}

var (
	adminActor = domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	ownerActor = domain.Actor{UserID: "owner-1", Role: domain.RoleManager}
	alice      = domain.Actor{UserID: "alice", Role: domain.RoleEndUser}
	bob        = domain.Actor{UserID: "bob", Role: domain.RoleEndUser}
)

func (f *fixture) seedCategory(id string) {
	f.db.categories[id] = &domain.Category{ID: id, Name: id, Slug: id, Active: true}
}

func (f *fixture) seedService(id string) {
	f.db.services[id] = &domain.Service{ID: id, Name: id, Slug: id, Active: true}
}

// seedBusiness stores an active business in the given state.
func (f *fixture) seedBusiness(id, categoryID string, status domain.ModerationStatus, serviceIDs ...string) *domain.Business {
	b := &domain.Business{
		ID:           id,
		OwnerID:      ownerActor.UserID,
		Name:         "Business " + id,
		CategoryID:   categoryID,
		Active:       true,
		Status:       status,
		Tags:         []string{},
		OpeningHours: []domain.OpeningHours{},
	}
	for _, sid := range serviceIDs {
		b.Services = append(b.Services, domain.BusinessService{ServiceID: sid, Currency: domain.DefaultCurrency})
	}
	f.db.businesses[id] = b
	return b
}

func (f *fixture) stored(id string) *domain.Business {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return cloneBusiness(f.db.businesses[id])
}
