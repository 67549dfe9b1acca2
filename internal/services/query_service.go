package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/open-prompts/awsome-prompt/internal/database"
	"github.com/open-prompts/awsome-prompt/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	CategoriesCacheKey = "stats:categories:public"
	TagsCacheKey       = "stats:tags:public"
	StatsCacheDuration = 1 * time.Hour
)

// ListTemplatesOptions are the Query Engine filters. Zero values mean "no
// filter"; CallerID is empty for anonymous callers.
type ListTemplatesOptions struct {
	CallerID    string
	OwnerID     string
	Visibility  models.Visibility
	Category    string
	Tags        []string
	MyLikes     bool
	MyFavorites bool
	PageSize    int
	PageToken   string
}

// ListTemplatesResult is one page of templates. For the authenticated mixed
// view the caller's private templates come back as a second, independently
// paginated list; the combined page token is "publicOffset:privateOffset".
type ListTemplatesResult struct {
	Templates            []models.Template
	NextPageToken        string
	PrivateTemplates     []models.Template
	PrivateNextPageToken string
	Mixed                bool
}

type templateFilters struct {
	visibility  models.Visibility
	ownerID     string
	category    string
	tags        []string
	likedBy     string
	favoritedBy string
}

// ListTemplates answers a filtered, visibility-scoped, paginated listing.
// Anonymous callers see public templates only. Authenticated callers without
// an explicit visibility filter get the mixed view: the public list plus their
// own private list. Ordering is creation time descending, ties broken by id.
func ListTemplates(opts ListTemplatesOptions) (*ListTemplatesResult, error) {
	if (opts.MyLikes || opts.MyFavorites) && opts.CallerID == "" {
		return nil, fmt.Errorf("%w: my_likes/my_favorites require a signed-in user", ErrUnauthenticated)
	}

	limit := opts.PageSize
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	base := templateFilters{
		category: opts.Category,
		tags:     opts.Tags,
	}
	if opts.MyLikes {
		base.likedBy = opts.CallerID
	}
	if opts.MyFavorites {
		base.favoritedBy = opts.CallerID
	}

	// Anonymous, or an explicit public filter: single public list.
	if opts.CallerID == "" || opts.Visibility == models.VisibilityPublic {
		f := base
		f.visibility = models.VisibilityPublic
		f.ownerID = opts.OwnerID
		templates, next, err := fetchTemplatePage(limit, parseOffset(opts.PageToken), f, opts.CallerID)
		if err != nil {
			return nil, err
		}
		return &ListTemplatesResult{Templates: templates, NextPageToken: next}, nil
	}

	// Explicit private filter: only the caller's own private templates.
	if opts.Visibility == models.VisibilityPrivate {
		if opts.OwnerID != "" && opts.OwnerID != opts.CallerID {
			return &ListTemplatesResult{}, nil
		}
		f := base
		f.visibility = models.VisibilityPrivate
		f.ownerID = opts.CallerID
		templates, next, err := fetchTemplatePage(limit, parseOffset(opts.PageToken), f, opts.CallerID)
		if err != nil {
			return nil, err
		}
		return &ListTemplatesResult{Templates: templates, NextPageToken: next}, nil
	}

	// Mixed view: public plus the caller's private, paginated independently.
	publicOffset, privateOffset := parseMixedToken(opts.PageToken)

	publicFilters := base
	publicFilters.visibility = models.VisibilityPublic
	publicFilters.ownerID = opts.OwnerID

	publicTemplates, nextPublic, err := fetchTemplatePage(limit, publicOffset, publicFilters, opts.CallerID)
	if err != nil {
		return nil, err
	}

	result := &ListTemplatesResult{
		Templates: publicTemplates,
		Mixed:     true,
	}

	// Filtering by another owner excludes the private half: nobody sees
	// someone else's private templates.
	nextPrivate := ""
	privateCount := 0
	if opts.OwnerID == "" || opts.OwnerID == opts.CallerID {
		privateFilters := base
		privateFilters.visibility = models.VisibilityPrivate
		privateFilters.ownerID = opts.CallerID

		privateTemplates, next, err := fetchTemplatePage(limit, privateOffset, privateFilters, opts.CallerID)
		if err != nil {
			return nil, err
		}
		result.PrivateTemplates = privateTemplates
		result.PrivateNextPageToken = next
		nextPrivate = next
		privateCount = len(privateTemplates)
	}

	// The combined token resumes both lists where this page left off.
	if nextPublic != "" || nextPrivate != "" {
		result.NextPageToken = fmt.Sprintf("%d:%d", publicOffset+len(publicTemplates), privateOffset+privateCount)
	}

	return result, nil
}

// fetchTemplatePage runs one filtered page query. Tag matching (match-any) is
// applied in memory before pagination: the JSON-encoded tag column has no
// containment operator that works on both the postgres and sqlite drivers.
func fetchTemplatePage(limit, offset int, f templateFilters, callerID string) ([]models.Template, string, error) {
	db := database.DB.Model(&models.Template{})

	if f.visibility != "" {
		db = db.Where("visibility = ?", f.visibility)
	}
	if f.ownerID != "" {
		db = db.Where("owner_id = ?", f.ownerID)
	}
	if f.category != "" {
		db = db.Where("category = ?", f.category)
	}
	if f.likedBy != "" {
		db = db.Where("id IN (?)", database.DB.Model(&models.TemplateLike{}).
			Select("template_id").Where("user_id = ?", f.likedBy))
	}
	if f.favoritedBy != "" {
		db = db.Where("id IN (?)", database.DB.Model(&models.TemplateFavorite{}).
			Select("template_id").Where("user_id = ?", f.favoritedBy))
	}

	db = db.Order("created_at desc, id desc")

	var templates []models.Template
	if len(f.tags) > 0 {
		var candidates []models.Template
		if err := db.Find(&candidates).Error; err != nil {
			return nil, "", err
		}
		matched := candidates[:0:0]
		for _, t := range candidates {
			if hasAnyTag(t.Tags, f.tags) {
				matched = append(matched, t)
			}
		}
		templates = pageSlice(matched, offset, limit)
	} else {
		if err := db.Offset(offset).Limit(limit).Find(&templates).Error; err != nil {
			return nil, "", err
		}
	}

	for i := range templates {
		if err := attachLatestVersion(&templates[i]); err != nil {
			return nil, "", err
		}
		attachSocialState(&templates[i], callerID)
	}

	nextToken := ""
	if len(templates) == limit {
		nextToken = strconv.Itoa(offset + limit)
	}
	return templates, nextToken, nil
}

func hasAnyTag(have []string, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func pageSlice(all []models.Template, offset, limit int) []models.Template {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// parseOffset reads a page token as a plain offset. Unparseable or negative
// tokens read as 0 rather than failing the request.
func parseOffset(token string) int {
	if token == "" {
		return 0
	}
	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

// parseMixedToken reads a "public:private" combined token. A single integer is
// accepted as either offset for tokens issued by the single-list form.
func parseMixedToken(token string) (int, int) {
	if token == "" {
		return 0, 0
	}
	parts := strings.Split(token, ":")
	if len(parts) == 2 {
		return parseOffset(parts[0]), parseOffset(parts[1])
	}
	offset := parseOffset(token)
	return offset, offset
}

// ListCategories aggregates template counts per category over the public
// scope, merged with the owner's private templates when ownerID is supplied.
func ListCategories(ownerID string) ([]models.CategoryStat, error) {
	counts, err := publicCategoryCounts()
	if err != nil {
		return nil, err
	}

	if ownerID != "" {
		private, err := categoryCounts(models.VisibilityPrivate, ownerID)
		if err != nil {
			return nil, err
		}
		for name, n := range private {
			counts[name] += n
		}
	}

	return sortedCategoryStats(counts), nil
}

// ListTags aggregates tag counts the same way; a template with N tags
// contributes one to each of its N counters.
func ListTags(ownerID string) ([]models.TagStat, error) {
	counts, err := publicTagCounts()
	if err != nil {
		return nil, err
	}

	if ownerID != "" {
		private, err := tagCounts(models.VisibilityPrivate, ownerID)
		if err != nil {
			return nil, err
		}
		for name, n := range private {
			counts[name] += n
		}
	}

	return sortedTagStats(counts), nil
}

// publicCategoryCounts serves the public scope from redis when possible; the
// cache is dropped on every template mutation.
func publicCategoryCounts() (map[string]int, error) {
	val, err := database.RedisClient.Get(database.Ctx, CategoriesCacheKey).Result()
	if err == nil {
		var cached map[string]int
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			return cached, nil
		}
	}

	counts, err := categoryCounts(models.VisibilityPublic, "")
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(counts); err == nil {
		database.RedisClient.Set(database.Ctx, CategoriesCacheKey, data, StatsCacheDuration)
	}
	return counts, nil
}

func publicTagCounts() (map[string]int, error) {
	val, err := database.RedisClient.Get(database.Ctx, TagsCacheKey).Result()
	if err == nil {
		var cached map[string]int
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			return cached, nil
		}
	}

	counts, err := tagCounts(models.VisibilityPublic, "")
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(counts); err == nil {
		database.RedisClient.Set(database.Ctx, TagsCacheKey, data, StatsCacheDuration)
	}
	return counts, nil
}

func categoryCounts(visibility models.Visibility, ownerID string) (map[string]int, error) {
	db := database.DB.Model(&models.Template{}).
		Where("visibility = ? AND category <> ''", visibility)
	if ownerID != "" {
		db = db.Where("owner_id = ?", ownerID)
	}

	var rows []models.CategoryStat
	if err := db.Select("category as name, count(*) as count").Group("category").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Name] = r.Count
	}
	return counts, nil
}

func tagCounts(visibility models.Visibility, ownerID string) (map[string]int, error) {
	db := database.DB.Model(&models.Template{}).Where("visibility = ?", visibility)
	if ownerID != "" {
		db = db.Where("owner_id = ?", ownerID)
	}

	var templates []models.Template
	if err := db.Select("tags").Find(&templates).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, t := range templates {
		for _, tag := range t.Tags {
			counts[tag]++
		}
	}
	return counts, nil
}

// Stats sort by count descending, ties broken by name.
func statsLess(countI int, nameI string, countJ int, nameJ string) bool {
	if countI != countJ {
		return countI > countJ
	}
	return nameI < nameJ
}

func sortedCategoryStats(counts map[string]int) []models.CategoryStat {
	stats := make([]models.CategoryStat, 0, len(counts))
	for name, n := range counts {
		stats = append(stats, models.CategoryStat{Name: name, Count: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		return statsLess(stats[i].Count, stats[i].Name, stats[j].Count, stats[j].Name)
	})
	return stats
}

func sortedTagStats(counts map[string]int) []models.TagStat {
	stats := make([]models.TagStat, 0, len(counts))
	for name, n := range counts {
		stats = append(stats, models.TagStat{Name: name, Count: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		return statsLess(stats[i].Count, stats[i].Name, stats[j].Count, stats[j].Name)
	})
	return stats
}

func invalidateStatsCache() {
	database.RedisClient.Del(database.Ctx, CategoriesCacheKey, TagsCacheKey)
}
