package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const indexPage = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
<title>Structure and Interpretation of Computer Programs</title>
<script src="js/jquery.min.js" type="text/javascript"></script>
<script src="js/footnotes.js" type="text/javascript"></script>
<link href="css/style.css" rel="stylesheet" type="text/css"/>
</head>
<body>
<nav class="header"><a href="ch01.xhtml">Next</a></nav>
<section>
<a id="toc"/>
<h1>Contents</h1>
<div class="contents">
<ul>
<li><a href="ch01.xhtml#s1">1 Building Abstractions</a></li>
<li><a href="ch01.xhtml#s1.1">1.1 The Elements of Programming</a></li>
<li><a href="preface.xhtml#p">Preface</a></li>
</ul>
</div>
</section>
<nav class="header"><a href="ch01.xhtml">Next</a></nav>
</body>
</html>`

const chapterPage = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
<title>1 Building Abstractions</title>
<script src="js/jquery.min.js" type="text/javascript"></script>
<script src="js/browsertest.js" type="text/javascript"></script>
<script src="js/keep.js" type="text/javascript"></script>
</head>
<body>
<nav class="header"><a href="index.xhtml">Top</a></nav>
<h2 id="s1">1 Building Abstractions</h2>
<p>Inline <math><mi>x</mi></math> and display:</p>
<math display="block"><mrow><mi>y</mi><mo>=</mo><mn>2</mn></mrow></math>
<pre class="prettyprint"><code>(define (square x) (* x x))</code></pre>
<h3 id="s1.1">1.1 The Elements</h3>
</body>
</html>`

func loadIndex(context.Context) ([]byte, error) {
	return []byte(indexPage), nil
}

func parseOutput(t *testing.T, out []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(out)))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	return doc
}
