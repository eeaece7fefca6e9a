package catalog_test

import (
	"testing"

	"pricewatch/internal/domain/catalog"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCanonicalize(t *testing.T) {
	Convey("Given raw URLs pointing at the same catalog item", t, func() {
		variants := []string{
			"https://www.amazon.com.au/dp/B0DWDR21CF?ref=pd_hp_d_atf",
			"https://www.amazon.com.au/dp/B0DWDR21CF/?pf_rd_p=4af574da&pd_rd_w=x7PGV",
			"https://www.amazon.com.au/Floating-Restaurant-75640/dp/B0DWDR21CF/?_encoding=UTF8",
			"https://www.amazon.com.au/gp/product/B0DWDR21CF?tag=promo-22",
			"https://www.amazon.com.au/dp/B0DWDR21CF#customerReviews",
		}

		Convey("Then every variant canonicalizes identically", func() {
			want := "https://www.amazon.com.au/dp/B0DWDR21CF"
			for _, v := range variants {
				So(catalog.Canonicalize(v), ShouldEqual, want)
			}
		})
	})

	Convey("Given URLs decorated with tracking query strings", t, func() {
		a := catalog.Canonicalize("https://x/dp/ABCDEFGHIJ?ref=1")
		b := catalog.Canonicalize("https://x/dp/ABCDEFGHIJ?pf_rd=2")

		Convey("Then both reduce to the bare identity", func() {
			So(a, ShouldEqual, "https://x/dp/ABCDEFGHIJ")
			So(b, ShouldEqual, a)
		})
	})

	Convey("Given inputs that are not catalog product pages", t, func() {
		inputs := []string{
			"",
			"not a url at all",
			"https://www.amazon.com.au/gp/cart/view.html",
			"https://example.com/dp/SHORT",
			"https://example.com/some/other/page?x=1",
		}

		Convey("Then canonicalization is the identity function", func() {
			for _, in := range inputs {
				So(catalog.Canonicalize(in), ShouldEqual, in)
			}
		})
	})
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"https://www.amazon.com.au/dp/B0DWDR21CF?x=1&y=2",
		"https://www.amazon.com.au/gp/product/B0DWDR21CF",
		"https://example.com/no/product/here",
		"",
		"::::not-parseable::::",
	}
	for _, in := range inputs {
		once := catalog.Canonicalize(in)
		twice := catalog.Canonicalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
