package scrape

import (
	"errors"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<script type="text/javascript">//<![CDATA[
_G={Region:"US",Lang:"en-US",ST:(typeof si_ST!=='undefined'?si_ST:new Date),Mkt:"en-US",RevIpCC:"us",RTL:false,Ver:"21",IG:"8E9A6C34A4F64B1A9D1B2C3D4E5F6A7B",EventID:"abc"};
//]]></script>
</head>
<body>
<div id="rich_tta" data-iid="translator.5023">
  <textarea id="tta_input_ta"></textarea>
</div>
<script type="text/javascript">
var params_AbusePreventionHelper = [1700000000000,"h0wK7kXpvjE2R5f3vQ_secret",3600000];
</script>
</body>
</html>`

func TestParsePage(t *testing.T) {
	tokens, err := ParsePage(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}

	if tokens.IG != "8E9A6C34A4F64B1A9D1B2C3D4E5F6A7B" {
		t.Errorf("IG = %q", tokens.IG)
	}
	if tokens.IID != "translator.5023" {
		t.Errorf("IID = %q", tokens.IID)
	}
	if tokens.Key != "1700000000000" {
		t.Errorf("Key = %q", tokens.Key)
	}
	if tokens.Token != "h0wK7kXpvjE2R5f3vQ_secret" {
		t.Errorf("Token = %q", tokens.Token)
	}
	if tokens.ExpiryMs != 3600000 {
		t.Errorf("ExpiryMs = %d", tokens.ExpiryMs)
	}
}

func TestParsePage_IIDFallback(t *testing.T) {
	// data-iid inside a script string is only found by the regex fallback.
	page := `<html><body><script>
var tpl = '<div data-iid="translator.5028"></div>';
_G={IG:"ABC"};
var params_AbusePreventionHelper = [1,"tok",600000];
</script></body></html>`

	tokens, err := ParsePage(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}
	if tokens.IID != "translator.5028" {
		t.Errorf("IID = %q", tokens.IID)
	}
}

func TestParsePage_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		field string
	}{
		{
			name:  "no IID",
			page:  `<html><script>_G={IG:"A"}; var params_AbusePreventionHelper = [1,"t",2];</script></html>`,
			field: "IID",
		},
		{
			name:  "no IG",
			page:  `<html><div data-iid="x"></div><script>var params_AbusePreventionHelper = [1,"t",2];</script></html>`,
			field: "IG",
		},
		{
			name:  "no helper",
			page:  `<html><div data-iid="x"></div><script>_G={IG:"A"};</script></html>`,
			field: "params_AbusePreventionHelper",
		},
		{
			name:  "empty token",
			page:  `<html><div data-iid="x"></div><script>_G={IG:"A"}; var params_AbusePreventionHelper = [1,"",2];</script></html>`,
			field: "token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePage(strings.NewReader(tt.page))
			var missing *MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingFieldError, got %v", err)
			}
			if missing.Field != tt.field {
				t.Errorf("Field = %q, want %q", missing.Field, tt.field)
			}
		})
	}
}

func TestParsePage_MalformedHelper(t *testing.T) {
	page := `<html><div data-iid="x"></div><script>_G={IG:"A"}; var params_AbusePreventionHelper = [1,"t",oops];</script></html>`

	_, err := ParsePage(strings.NewReader(page))
	if err == nil {
		t.Fatal("expected an error for a malformed helper array")
	}
	if !strings.Contains(err.Error(), "params_AbusePreventionHelper") {
		t.Errorf("error should name the field, got %v", err)
	}
}
