package document

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kottinov/website-builder/pkg/page"
)

// Rule names a page invariant reported by [Document.Check].
type Rule string

const (
	RuleDuplicateID   Rule = "duplicate-id"
	RuleMissingID     Rule = "missing-id"
	RuleOrderIndex    Rule = "order-index"
	RuleSectionParent Rule = "section-parent"
	RuleMissingParent Rule = "missing-parent"
	RuleDanglingRelIn Rule = "dangling-relin"
	RuleDanglingRelTo Rule = "dangling-relto"
	RuleCDATA         Rule = "cdata"
	RuleNestedItems   Rule = "nested-items"
)

// Violation is one broken invariant.
type Violation struct {
	Rule    Rule   `json:"rule"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.ID == "" {
		return fmt.Sprintf("[%s] %s", v.Rule, v.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", v.Rule, v.ID, v.Message)
}

// Check reports every invariant the page breaks, in a stable order. anchors
// lists ids that relTo may reference without existing on the page.
func (d *Document) Check(anchors ...string) []Violation {
	var out []Violation
	add := func(r Rule, id, format string, args ...any) {
		out = append(out, Violation{Rule: r, ID: id, Message: fmt.Sprintf(format, args...)})
	}
	allowed := set(anchors)

	seen := make(map[string]int)
	d.page.Walk(func(c *page.Component) bool {
		if c.ID == "" {
			add(RuleMissingID, "", "component of kind %q has no id", c.EffectiveKind())
		} else {
			seen[c.ID]++
			if seen[c.ID] == 2 {
				add(RuleDuplicateID, c.ID, "id is used more than once")
			}
		}

		if c.IsSection() {
			if c.RelIn != nil {
				add(RuleSectionParent, c.ID, "SECTION has relIn %q; sections must be top-level", c.RelIn.ID)
			}
		} else if c.ParentID() == "" && !d.nestedOnly(c) {
			add(RuleMissingParent, c.ID, "%s has no relIn.id", c.EffectiveKind())
		}

		if pid := c.ParentID(); pid != "" && !d.Has(pid) {
			add(RuleDanglingRelIn, c.ID, "relIn.id %s does not exist", pid)
		}
		if c.RelTo != nil && !d.Has(c.RelTo.ID) && !allowed[c.RelTo.ID] {
			add(RuleDanglingRelTo, c.ID, "relTo.id %s does not exist", c.RelTo.ID)
		}
		for _, f := range []string{"content", "text"} {
			if strings.Contains(c.String(f), "<![CDATA[") {
				add(RuleCDATA, c.ID, "%s is wrapped in CDATA", f)
			}
		}
		if len(c.Items) > 0 {
			add(RuleNestedItems, c.ID, "has %d nested items; the page should be flat", len(c.Items))
		}
		return true
	})

	groups := d.Groups()
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		group := k
		if group == "" {
			group = "top level"
		}
		members := groups[k]
		used := make(map[int]bool, len(members))
		for _, c := range members {
			switch {
			case c.OrderIndex < 0 || c.OrderIndex >= len(members):
				add(RuleOrderIndex, c.ID, "orderIndex %d outside 0..%d in %s", c.OrderIndex, len(members)-1, group)
			case used[c.OrderIndex]:
				add(RuleOrderIndex, c.ID, "orderIndex %d repeated in %s", c.OrderIndex, group)
			}
			used[c.OrderIndex] = true
		}
	}
	return out
}

// nestedOnly reports whether c sits in a legacy items array, where the
// container is its implicit parent.
func (d *Document) nestedOnly(c *page.Component) bool {
	for _, top := range d.page.Items {
		if top == c {
			return false
		}
	}
	return true
}
