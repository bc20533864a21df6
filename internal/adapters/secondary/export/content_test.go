package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractContent(t *testing.T) {
	fragment := `<h1>Channels</h1>
<p>Share memory by <em>communicating</em>.</p>
<ul>
<li>buffered</li>
<li>unbuffered</li>
</ul>
<h2>Example</h2>
<pre><code class="language-go">ch := make(chan int)
close(ch)
</code></pre>
<blockquote><p>Don't panic.</p></blockquote>`

	content, err := ExtractContent(fragment)
	require.NoError(t, err)

	assert.Equal(t, "Channels", content.Title)
	assert.Equal(t, []Block{
		{Kind: BlockParagraph, Text: "Share memory by communicating."},
		{Kind: BlockItem, Text: "buffered"},
		{Kind: BlockItem, Text: "unbuffered"},
		{Kind: BlockHeading, Text: "Example"},
		{Kind: BlockCode, Text: "ch := make(chan int)\nclose(ch)"},
		{Kind: BlockQuote, Text: "Don't panic."},
	}, content.Blocks)
}

func TestExtractContent_HeadingAfterBody(t *testing.T) {
	content, err := ExtractContent("<p>intro</p><h2>Later</h2>")
	require.NoError(t, err)

	assert.Empty(t, content.Title)
	require.Len(t, content.Blocks, 2)
	assert.Equal(t, Block{Kind: BlockHeading, Text: "Later"}, content.Blocks[1])
}

func TestExtractContent_Empty(t *testing.T) {
	content, err := ExtractContent("")
	require.NoError(t, err)
	assert.Empty(t, content.Title)
	assert.Empty(t, content.Blocks)
}
