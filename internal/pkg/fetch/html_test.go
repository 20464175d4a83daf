package fetch

import (
	"reflect"
	"testing"
)

const matchHTML = `<html><head><title>  Team A vs Team B - Site </title></head><body>
<div class="EventHeaderTitle">Team A</div>
<div class="EventHeaderTitle">
   Team B
</div>
<div class="EventHeaderTitle">   </div>
<a href="/match/1" aria-label="Team A vs Team B event">x</a>
<a href="">empty</a>
<span class="BreadcrumbItem">Fußball</span>
<span class="BreadcrumbItem">Bundesliga</span>
</body></html>`

func TestHTMLPage(t *testing.T) {
	p, err := NewHTMLPageString("https://example.com/m", matchHTML)
	if err != nil {
		t.Fatalf("NewHTMLPageString: %v", err)
	}

	if p.URL() != "https://example.com/m" {
		t.Errorf("URL = %q", p.URL())
	}
	if p.Title() != "Team A vs Team B - Site" {
		t.Errorf("Title = %q", p.Title())
	}
	if got := p.Texts(".EventHeaderTitle"); !reflect.DeepEqual(got, []string{"Team A", "Team B"}) {
		t.Errorf("Texts = %q", got)
	}
	if got := p.Attrs("a", "href"); !reflect.DeepEqual(got, []string{"/match/1"}) {
		t.Errorf("Attrs(href) = %q", got)
	}
	if got := p.Attrs("[aria-label]", "aria-label"); !reflect.DeepEqual(got, []string{"Team A vs Team B event"}) {
		t.Errorf("Attrs(aria-label) = %q", got)
	}
	if got := p.First(".BreadcrumbItem"); got != "Fußball" {
		t.Errorf("First = %q", got)
	}
	if got := p.First(".missing"); got != "" {
		t.Errorf("First(missing) = %q", got)
	}
}

func TestNew(t *testing.T) {
	f, err := New(Settings{Kind: KindHTTP})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f.(*HTTPFetcher); !ok {
		t.Errorf("New(http) = %T", f)
	}
	if _, err := New(Settings{Kind: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestIsChallengeTitle(t *testing.T) {
	if !isChallengeTitle("Just a moment...") {
		t.Error("cloudflare interstitial not detected")
	}
	if isChallengeTitle("Team A vs Team B - Site") {
		t.Error("regular title flagged as challenge")
	}
}
