package source

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pkg/conv"
)

// normalize 把抓取程序输出的一条原始记录清洗为 Item：
//   - title / description 去除首尾空白，description 为 "N/A" 时视为缺失
//   - genre 每项去空白并转为首字母大写；也接受 ", " 分隔的字符串
//   - rating 为 [score, count]，任一项无法解析时视为缺失；"N/A" 表示无评分
//   - status 转为首字母大写；episodes / release year 无法解析时视为缺失
//
// 标题为空时返回 false。
func normalize(id string, fields map[string]any) (core.Item, bool) {
	title := strings.TrimSpace(asString(fields["title"]))
	if title == "" {
		return core.Item{}, false
	}
	caser := cases.Title(language.Und)

	it := core.Item{
		ID:     id,
		Title:  title,
		Genres: parseGenres(fields["genre"], caser),
		Status: caser.String(strings.TrimSpace(asString(fields["status"]))),
	}

	if desc := strings.TrimSpace(asString(fields["description"])); !strings.EqualFold(desc, core.NotAvailable) {
		it.Description = desc
	}

	if rating, ok := fields["rating"].([]any); ok {
		if len(rating) > 0 {
			if v, ok := conv.ToFloat64(rating[0]); ok {
				it.RatingScore = &v
			}
		}
		if len(rating) > 1 {
			if v, ok := conv.ToInt64(rating[1]); ok {
				it.RatingCount = &v
			}
		}
	}

	if v, ok := conv.ToInt64(fields["episodes"]); ok {
		n := int(v)
		it.Episodes = &n
	}

	year := fields["release_year"]
	if year == nil {
		year = fields["release year"]
	}
	if v, ok := conv.ToInt64(year); ok && v > 0 {
		n := int(v)
		it.ReleaseYear = &n
	}
	return it, true
}

func parseGenres(v any, caser cases.Caser) []string {
	var raw []string
	switch g := v.(type) {
	case []any:
		raw = conv.Strings(g)
	case []string:
		raw = g
	case string:
		raw = strings.Split(g, ",")
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, caser.String(s))
	}
	return out
}

func asString(v any) string {
	s, _ := conv.ToString(v)
	return s
}
