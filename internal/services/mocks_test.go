package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
)

// fakeRepository is a map-backed Repository for service tests. It implements
// only the behavior the services rely on; statistics methods return zero
// values unless a test needs more.
type fakeRepository struct {
	users         *fakeUserRepo
	skills        *fakeSkillRepo
	swaps         *fakeSwapRepo
	feedback      *fakeFeedbackRepo
	notifications *fakeNotificationRepo
	reports       *fakeReportRepo
}

func newFakeRepository() *fakeRepository {
	r := &fakeRepository{}
	r.users = &fakeUserRepo{parent: r, byID: map[uint]*models.User{}}
	r.skills = &fakeSkillRepo{byID: map[uint]*models.Skill{}}
	r.swaps = &fakeSwapRepo{byID: map[uint]*models.SwapRequest{}}
	r.feedback = &fakeFeedbackRepo{byID: map[uint]*models.Feedback{}}
	r.notifications = &fakeNotificationRepo{byID: map[uint]*models.Notification{}}
	r.reports = &fakeReportRepo{byID: map[uint]*models.Report{}}
	return r
}

func (r *fakeRepository) User() repositories.UserRepository                 { return r.users }
func (r *fakeRepository) Skill() repositories.SkillRepository               { return r.skills }
func (r *fakeRepository) SwapRequest() repositories.SwapRequestRepository   { return r.swaps }
func (r *fakeRepository) Feedback() repositories.FeedbackRepository         { return r.feedback }
func (r *fakeRepository) Notification() repositories.NotificationRepository { return r.notifications }
func (r *fakeRepository) Report() repositories.ReportRepository             { return r.reports }

func (r *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}
func (r *fakeRepository) Ping(ctx context.Context) error { return nil }
func (r *fakeRepository) Close() error                   { return nil }

// ===== USERS =====

type fakeUserRepo struct {
	parent *fakeRepository
	byID   map[uint]*models.User
	nextID uint

	offered map[uint][]uint
	wanted  map[uint][]uint
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	for _, existing := range f.byID {
		if existing.Email == user.Email || existing.ExternalID == user.ExternalID {
			return repositories.ErrDuplicateKey
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	f.resolveSkills(user)
	return user, nil
}

func (f *fakeUserRepo) GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*models.User, error) {
	for _, user := range f.byID {
		if user.ExternalID == externalID {
			f.resolveSkills(user)
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	for _, user := range f.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if _, ok := f.byID[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var out []*models.User
	for _, user := range f.byID {
		if filters.IsPublic != nil && user.IsPublic != *filters.IsPublic {
			continue
		}
		if filters.IsBanned != nil && user.IsBanned != *filters.IsBanned {
			continue
		}
		if filters.Query != nil && !strings.Contains(strings.ToLower(user.Name), strings.ToLower(*filters.Query)) {
			continue
		}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, filters.Limit, filters.Offset)
}

func (f *fakeUserRepo) SearchBySkill(ctx context.Context, tx *gorm.DB, skillIDs []uint, skillType string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	match := func(userSkills []uint) bool {
		for _, want := range skillIDs {
			for _, have := range userSkills {
				if want == have {
					return true
				}
			}
		}
		return false
	}

	var out []*models.User
	for _, user := range f.byID {
		if !user.IsPublic || user.IsBanned {
			continue
		}
		hit := false
		switch skillType {
		case "offered":
			hit = match(f.offered[user.ID])
		case "wanted":
			hit = match(f.wanted[user.ID])
		default:
			hit = match(f.offered[user.ID]) || match(f.wanted[user.ID])
		}
		if hit {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, filters.Limit, filters.Offset)
}

func (f *fakeUserRepo) SetOfferedSkills(ctx context.Context, tx *gorm.DB, userID uint, skillIDs []uint) error {
	if f.offered == nil {
		f.offered = map[uint][]uint{}
	}
	f.offered[userID] = skillIDs
	return nil
}

func (f *fakeUserRepo) SetWantedSkills(ctx context.Context, tx *gorm.DB, userID uint, skillIDs []uint) error {
	if f.wanted == nil {
		f.wanted = map[uint][]uint{}
	}
	f.wanted[userID] = skillIDs
	return nil
}

func (f *fakeUserRepo) CountUsingSkill(ctx context.Context, tx *gorm.DB, skillID uint) (int64, error) {
	var count int64
	for userID := range f.byID {
		for _, id := range f.offered[userID] {
			if id == skillID {
				count++
			}
		}
		for _, id := range f.wanted[userID] {
			if id == skillID {
				count++
			}
		}
	}
	return count, nil
}

func (f *fakeUserRepo) UpdateRating(ctx context.Context, tx *gorm.DB, userID uint, average float64, count int) error {
	user, ok := f.byID[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RatingAverage = average
	user.RatingCount = count
	return nil
}

func (f *fakeUserRepo) ActivityStats(ctx context.Context, tx *gorm.DB) (*repositories.UserActivityStats, error) {
	stats := &repositories.UserActivityStats{Total: int64(len(f.byID))}
	for _, user := range f.byID {
		if user.IsPublic {
			stats.Public++
		}
		if user.IsBanned {
			stats.Banned++
		}
		if user.IsAdmin() {
			stats.Admins++
		}
	}
	return stats, nil
}

func (f *fakeUserRepo) resolveSkills(user *models.User) {
	user.SkillsOffered = f.parent.skills.resolve(f.offered[user.ID])
	user.SkillsWanted = f.parent.skills.resolve(f.wanted[user.ID])
}

// ===== SKILLS =====

type fakeSkillRepo struct {
	byID   map[uint]*models.Skill
	nextID uint
}

func (f *fakeSkillRepo) Create(ctx context.Context, tx *gorm.DB, skill *models.Skill) error {
	f.nextID++
	skill.ID = f.nextID
	f.byID[skill.ID] = skill
	return nil
}

func (f *fakeSkillRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Skill, error) {
	skill, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return skill, nil
}

func (f *fakeSkillRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Skill, error) {
	var out []*models.Skill
	for _, id := range ids {
		if skill, ok := f.byID[id]; ok {
			out = append(out, skill)
		}
	}
	return out, nil
}

func (f *fakeSkillRepo) Update(ctx context.Context, tx *gorm.DB, skill *models.Skill) error {
	if _, ok := f.byID[skill.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.byID[skill.ID] = skill
	return nil
}

func (f *fakeSkillRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSkillRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.SkillFilters) ([]*models.Skill, int64, error) {
	var out []*models.Skill
	for _, skill := range f.byID {
		if filters.IsGlobal != nil && skill.IsGlobal != *filters.IsGlobal {
			continue
		}
		if filters.Query != nil && !strings.Contains(strings.ToLower(skill.Name), strings.ToLower(*filters.Query)) {
			continue
		}
		out = append(out, skill)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, filters.Limit, filters.Offset)
}

func (f *fakeSkillRepo) Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*models.Skill, error) {
	var out []*models.Skill
	for _, skill := range f.byID {
		if strings.Contains(strings.ToLower(skill.Name), strings.ToLower(query)) {
			out = append(out, skill)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSkillRepo) SearchByName(ctx context.Context, tx *gorm.DB, name string) ([]*models.Skill, error) {
	var out []*models.Skill
	for _, skill := range f.byID {
		if strings.EqualFold(skill.Name, name) {
			out = append(out, skill)
		}
	}
	return out, nil
}

func (f *fakeSkillRepo) ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID uint) (bool, error) {
	for _, skill := range f.byID {
		if skill.ID != excludeID && strings.EqualFold(skill.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSkillRepo) GetPending(ctx context.Context, tx *gorm.DB, filters repositories.SkillFilters) ([]*models.Skill, int64, error) {
	pending := false
	filters.IsGlobal = &pending
	return f.List(ctx, tx, filters)
}

func (f *fakeSkillRepo) Popularity(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.SkillUsage, error) {
	return nil, nil
}

func (f *fakeSkillRepo) resolve(ids []uint) []models.Skill {
	out := make([]models.Skill, 0, len(ids))
	for _, id := range ids {
		if skill, ok := f.byID[id]; ok {
			out = append(out, *skill)
		}
	}
	return out
}

// ===== SWAP REQUESTS =====

type fakeSwapRepo struct {
	byID   map[uint]*models.SwapRequest
	nextID uint
}

func (f *fakeSwapRepo) Create(ctx context.Context, tx *gorm.DB, request *models.SwapRequest) error {
	f.nextID++
	request.ID = f.nextID
	request.CreatedAt = time.Now()
	f.byID[request.ID] = request
	return nil
}

func (f *fakeSwapRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.SwapRequest, error) {
	swap, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return swap, nil
}

func (f *fakeSwapRepo) Update(ctx context.Context, tx *gorm.DB, request *models.SwapRequest) error {
	if _, ok := f.byID[request.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.byID[request.ID] = request
	return nil
}

func (f *fakeSwapRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSwapRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.SwapRequestFilters) ([]*models.SwapRequest, int64, error) {
	var out []*models.SwapRequest
	for _, swap := range f.byID {
		if filters.Status != nil && swap.Status != *filters.Status {
			continue
		}
		if filters.UserID != nil {
			switch filters.Direction {
			case "sent":
				if swap.RequesterID != *filters.UserID {
					continue
				}
			case "received":
				if swap.ReceiverID != *filters.UserID {
					continue
				}
			default:
				if !swap.Involves(*filters.UserID) {
					continue
				}
			}
		}
		out = append(out, swap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, filters.Limit, filters.Offset)
}

func (f *fakeSwapRepo) GetPublic(ctx context.Context, tx *gorm.DB, filters repositories.SwapRequestFilters) ([]*models.SwapRequest, int64, error) {
	return f.List(ctx, tx, filters)
}

func (f *fakeSwapRepo) FindPendingBetween(ctx context.Context, tx *gorm.DB, userA, userB, skillOffered, skillRequested uint) (*models.SwapRequest, error) {
	for _, swap := range f.byID {
		if swap.Status != models.SwapStatusPending {
			continue
		}
		direct := swap.RequesterID == userA && swap.ReceiverID == userB &&
			swap.SkillOfferedID == skillOffered && swap.SkillRequestedID == skillRequested
		mirrored := swap.RequesterID == userB && swap.ReceiverID == userA &&
			swap.SkillOfferedID == skillRequested && swap.SkillRequestedID == skillOffered
		if direct || mirrored {
			return swap, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeSwapRepo) HasCompletedBetween(ctx context.Context, tx *gorm.DB, userA, userB uint) (bool, error) {
	for _, swap := range f.byID {
		if swap.Status != models.SwapStatusCompleted {
			continue
		}
		if (swap.RequesterID == userA && swap.ReceiverID == userB) ||
			(swap.RequesterID == userB && swap.ReceiverID == userA) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSwapRepo) CountActiveForUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	var count int64
	for _, swap := range f.byID {
		if !swap.Involves(userID) {
			continue
		}
		if swap.Status == models.SwapStatusPending || swap.Status == models.SwapStatusAccepted {
			count++
		}
	}
	return count, nil
}

func (f *fakeSwapRepo) DeleteAllForUser(ctx context.Context, tx *gorm.DB, userID uint) error {
	for id, swap := range f.byID {
		if swap.Involves(userID) {
			delete(f.byID, id)
		}
	}
	return nil
}

func (f *fakeSwapRepo) Stats(ctx context.Context, tx *gorm.DB, since time.Time) (*repositories.SwapRequestStats, error) {
	return &repositories.SwapRequestStats{Total: int64(len(f.byID))}, nil
}

// ===== FEEDBACK =====

type fakeFeedbackRepo struct {
	byID   map[uint]*models.Feedback
	nextID uint
}

func (f *fakeFeedbackRepo) Create(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error {
	for _, existing := range f.byID {
		if existing.ReviewerID == feedback.ReviewerID && existing.RevieweeID == feedback.RevieweeID {
			return repositories.ErrDuplicateKey
		}
	}
	f.nextID++
	feedback.ID = f.nextID
	feedback.CreatedAt = time.Now()
	f.byID[feedback.ID] = feedback
	return nil
}

func (f *fakeFeedbackRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Feedback, error) {
	feedback, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return feedback, nil
}

func (f *fakeFeedbackRepo) Update(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error {
	if _, ok := f.byID[feedback.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.byID[feedback.ID] = feedback
	return nil
}

func (f *fakeFeedbackRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeFeedbackRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.FeedbackFilters) ([]*models.Feedback, int64, error) {
	var out []*models.Feedback
	for _, feedback := range f.byID {
		if filters.RevieweeID != nil && feedback.RevieweeID != *filters.RevieweeID {
			continue
		}
		if filters.Rating != nil && feedback.Rating != *filters.Rating {
			continue
		}
		out = append(out, feedback)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, filters.Limit, filters.Offset)
}

func (f *fakeFeedbackRepo) ExistsForPair(ctx context.Context, tx *gorm.DB, reviewerID, revieweeID uint) (bool, error) {
	for _, feedback := range f.byID {
		if feedback.ReviewerID == reviewerID && feedback.RevieweeID == revieweeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFeedbackRepo) RatingsForReviewee(ctx context.Context, tx *gorm.DB, revieweeID uint) ([]int, error) {
	var ratings []int
	for _, feedback := range f.byID {
		if feedback.RevieweeID == revieweeID {
			ratings = append(ratings, feedback.Rating)
		}
	}
	return ratings, nil
}

func (f *fakeFeedbackRepo) DeleteAllForUser(ctx context.Context, tx *gorm.DB, userID uint) error {
	for id, feedback := range f.byID {
		if feedback.ReviewerID == userID || feedback.RevieweeID == userID {
			delete(f.byID, id)
		}
	}
	return nil
}

func (f *fakeFeedbackRepo) Stats(ctx context.Context, tx *gorm.DB, since time.Time) (*repositories.FeedbackStats, error) {
	return &repositories.FeedbackStats{Total: int64(len(f.byID))}, nil
}

func (f *fakeFeedbackRepo) SummaryForUser(ctx context.Context, tx *gorm.DB, revieweeID uint) (*repositories.FeedbackSummary, error) {
	ratings, _ := f.RatingsForReviewee(ctx, tx, revieweeID)
	average, count := ComputeRating(ratings)
	summary := &repositories.FeedbackSummary{
		TotalFeedback:      int64(count),
		AverageRating:      average,
		RatingDistribution: map[int]int64{},
	}
	for _, rating := range ratings {
		summary.RatingDistribution[rating]++
	}
	return summary, nil
}

// ===== NOTIFICATIONS =====

type fakeNotificationRepo struct {
	byID   map[uint]*models.Notification
	nextID uint
}

func (f *fakeNotificationRepo) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	f.nextID++
	notification.ID = f.nextID
	notification.CreatedAt = time.Now()
	f.byID[notification.ID] = notification
	return nil
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Notification, error) {
	notification, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return notification, nil
}

func (f *fakeNotificationRepo) Update(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	if _, ok := f.byID[notification.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.byID[notification.ID] = notification
	return nil
}

func (f *fakeNotificationRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeNotificationRepo) GetByRecipient(ctx context.Context, tx *gorm.DB, recipientID uint, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	var out []*models.Notification
	for _, notification := range f.byID {
		if notification.RecipientID != nil && *notification.RecipientID != recipientID {
			continue
		}
		if filters.IsActive != nil && notification.IsActive != *filters.IsActive {
			continue
		}
		if filters.Type != nil && notification.Type != *filters.Type {
			continue
		}
		out = append(out, notification)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, filters.Limit, filters.Offset)
}

func (f *fakeNotificationRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	var out []*models.Notification
	for _, notification := range f.byID {
		if filters.Type != nil && notification.Type != *filters.Type {
			continue
		}
		out = append(out, notification)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, filters.Limit, filters.Offset)
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, tx *gorm.DB, recipientID uint) (int64, error) {
	var count int64
	for _, notification := range f.byID {
		if notification.RecipientID != nil && *notification.RecipientID != recipientID {
			continue
		}
		if !notification.IsActive {
			continue
		}
		if notification.ExpiresAt != nil && !notification.ExpiresAt.After(time.Now()) {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeNotificationRepo) BulkDelete(ctx context.Context, tx *gorm.DB, ids []uint) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if _, ok := f.byID[id]; ok {
			delete(f.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeNotificationRepo) DeactivateExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	var deactivated int64
	for _, notification := range f.byID {
		if notification.IsActive && notification.ExpiresAt != nil && notification.ExpiresAt.Before(now) {
			notification.IsActive = false
			deactivated++
		}
	}
	return deactivated, nil
}

func (f *fakeNotificationRepo) Stats(ctx context.Context, tx *gorm.DB, since time.Time) (*repositories.NotificationStats, error) {
	return &repositories.NotificationStats{Total: int64(len(f.byID))}, nil
}

// ===== REPORTS =====

type fakeReportRepo struct {
	byID   map[uint]*models.Report
	nextID uint
}

func (f *fakeReportRepo) Create(ctx context.Context, tx *gorm.DB, report *models.Report) error {
	f.nextID++
	report.ID = f.nextID
	report.CreatedAt = time.Now()
	f.byID[report.ID] = report
	return nil
}

func (f *fakeReportRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Report, error) {
	report, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return report, nil
}

func (f *fakeReportRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ReportFilters) ([]*models.Report, int64, error) {
	var out []*models.Report
	for _, report := range f.byID {
		if filters.Type != nil && report.Type != *filters.Type {
			continue
		}
		out = append(out, report)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, filters.Limit, filters.Offset)
}

// ===== SHARED =====

func swapFiltersAll() repositories.SwapRequestFilters {
	return repositories.SwapRequestFilters{Limit: 50}
}

func swapRequestFiltersSent() repositories.SwapRequestFilters {
	return repositories.SwapRequestFilters{Limit: 50, Direction: "sent"}
}

func notificationFiltersAll() repositories.NotificationFilters {
	return repositories.NotificationFilters{Limit: 50}
}

func paginate[T any](items []T, limit, offset int) ([]T, int64, error) {
	total := int64(len(items))
	if offset > 0 {
		if offset >= len(items) {
			return []T{}, total, nil
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, total, nil
}
