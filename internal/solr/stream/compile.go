package stream

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/scxa/internal/solr/query"
)

// MatchAll is the query used when a search has no query clauses.
const MatchAll = "*:*"

// Compile renders e in the backend's streaming expression syntax, e.g.
//
//	unique(search(scxa-analytics, q="*:*", fq="cell_id:(c1)", fl="cell_id", sort="cell_id asc", rows=1000), over="cell_id")
func Compile(e Expression) string {
	var sb strings.Builder
	compile(&sb, e)
	return sb.String()
}

func compile(sb *strings.Builder, e Expression) {
	switch n := e.(type) {
	case *SearchNode:
		compileSearch(sb, n)
	case *UniqueNode:
		sb.WriteString("unique(")
		compile(sb, n.upstream)
		sb.WriteString(", over=")
		sb.WriteString(quote(n.over))
		sb.WriteByte(')')
	case *SelectNode:
		sb.WriteString("select(")
		compile(sb, n.upstream)
		for _, m := range n.mappings {
			sb.WriteString(", ")
			sb.WriteString(m.Source)
			if m.Target != m.Source {
				sb.WriteString(" as ")
				sb.WriteString(m.Target)
			}
		}
		sb.WriteByte(')')
	case *SortNode:
		sb.WriteString("sort(")
		compile(sb, n.upstream)
		sb.WriteString(", by=")
		sb.WriteString(quote(SortString(n.keys)))
		sb.WriteByte(')')
	case *InnerJoinNode:
		sb.WriteString("innerJoin(")
		compile(sb, n.left)
		sb.WriteString(", ")
		compile(sb, n.right)
		sb.WriteString(", on=")
		sb.WriteString(quote(n.on))
		sb.WriteByte(')')
	case *CartesianProductNode:
		sb.WriteString("cartesianProduct(")
		compile(sb, n.upstream)
		for _, f := range n.fields {
			sb.WriteString(", ")
			sb.WriteString(f)
		}
		sb.WriteByte(')')
	default:
		panic(fmt.Sprintf("stream: unknown expression %T", e))
	}
}

func compileSearch(sb *strings.Builder, s *SearchNode) {
	p := s.params
	sb.WriteString("search(")
	sb.WriteString(s.collection)
	sb.WriteString(", q=")
	sb.WriteString(quote(QueryString(p.Query, p.Normalize)))
	if len(p.Filter) > 0 {
		sb.WriteString(", fq=")
		sb.WriteString(quote(QueryString(p.Filter, p.Normalize)))
	}
	if len(p.Fields) > 0 {
		sb.WriteString(", fl=")
		sb.WriteString(quote(strings.Join(p.Fields, ",")))
	}
	if len(p.Sort) > 0 {
		sb.WriteString(", sort=")
		sb.WriteString(quote(SortString(p.Sort)))
	}
	if p.Facet != nil {
		sb.WriteString(`, facet="true", facet.field=`)
		sb.WriteString(quote(p.Facet.Field))
		sb.WriteString(", facet.limit=")
		sb.WriteString(strconv.Itoa(p.Facet.Limit))
		sb.WriteString(", facet.mincount=")
		sb.WriteString(strconv.Itoa(p.Facet.MinCount))
	}
	if s.allDocs {
		sb.WriteString(`, qt="/export"`)
	} else {
		sb.WriteString(", rows=")
		sb.WriteString(strconv.Itoa(p.Rows))
	}
	sb.WriteByte(')')
}

// QueryString renders clauses as a boolean query: terms of one clause are
// OR-ed, clauses are AND-ed. No clauses renders MatchAll.
func QueryString(clauses []query.Clause, normalize bool) string {
	if len(clauses) == 0 {
		return MatchAll
	}
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		terms := make([]string, len(c.Terms))
		for j, t := range c.Terms {
			terms[j] = Term(t, normalize)
		}
		parts[i] = c.Field + ":(" + strings.Join(terms, " OR ") + ")"
	}
	return strings.Join(parts, " AND ")
}

// Term renders one term. With normalize, query syntax is escaped and a
// multi-word term is wildcard-wrapped so it matches as a substring. Without
// it the term is a quoted literal and nothing in it is query syntax.
func Term(t string, normalize bool) string {
	if !normalize {
		return `"` + literalEscaper.Replace(t) + `"`
	}
	escaped := termEscaper.Replace(t)
	if strings.ContainsAny(t, " \t\n") {
		return "*" + escaped + "*"
	}
	return escaped
}

// SortString renders sort keys as "field dir,field dir".
func SortString(keys []query.SortKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		dir := k.Direction
		if dir == "" {
			dir = query.Asc
		}
		parts[i] = k.Field + " " + string(dir)
	}
	return strings.Join(parts, ",")
}

func quote(s string) string {
	return `"` + literalEscaper.Replace(s) + `"`
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

var termEscaper = strings.NewReplacer(
	`\`, `\\`,
	`+`, `\+`,
	`-`, `\-`,
	`&`, `\&`,
	`|`, `\|`,
	`!`, `\!`,
	`(`, `\(`,
	`)`, `\)`,
	`{`, `\{`,
	`}`, `\}`,
	`[`, `\[`,
	`]`, `\]`,
	`^`, `\^`,
	`"`, `\"`,
	`~`, `\~`,
	`*`, `\*`,
	`?`, `\?`,
	`:`, `\:`,
	`/`, `\/`,
	` `, `\ `,
	"\t", "\\\t",
	"\n", "\\\n",
)
