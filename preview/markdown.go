package preview

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"

	"github.com/use-agent/linkpreview/models"
)

// mdConverter is goroutine-safe and shared by every call.
var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// Markdown renders every card of md as Markdown, for surfaces that show
// text only (the CLI and the MCP tool).
func Markdown(md *models.LinkMetadata) (string, error) {
	fragment, err := CardsHTML(md)
	if err != nil {
		return "", err
	}
	return mdConverter.ConvertString(fragment, converter.WithDomain(md.URL))
}
