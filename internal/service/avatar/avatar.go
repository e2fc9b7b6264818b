package avatar

import (
	"net/url"
	"strings"
)

const (
	PLACEHOLDER_ID    = "{id}"
	PLACEHOLDER_STYLE = "{style}"
)

// Service 根据模板生成头像地址，相同的 ID 和风格总是得到相同的地址
type Service struct {
	template string
	styles   []string
}

func NewService(template string, styles []string) *Service {
	return &Service{
		template: template,
		styles:   styles,
	}
}

func (s *Service) Styles() []string {
	styles := make([]string, len(s.styles))
	copy(styles, s.styles)
	return styles
}

func (s *Service) URL(playerID, style string) string {
	if s.template == "" {
		return ""
	}

	r := strings.NewReplacer(
		PLACEHOLDER_ID, url.QueryEscape(playerID),
		PLACEHOLDER_STYLE, url.PathEscape(style),
	)

	return r.Replace(s.template)
}
