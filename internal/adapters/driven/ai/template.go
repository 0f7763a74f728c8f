package ai

import (
	"context"
	"fmt"

	"github.com/nyaya-labs/nyaya-core/internal/core/domain"
	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
)

// Ensure TemplateExplainer implements Explainer
var _ driven.Explainer = (*TemplateExplainer)(nil)

// englishTemplates holds one deterministic explanation per risk category.
// %s receives the matched text.
var englishTemplates = map[string]string{
	"penalty":         "This clause imposes a penalty: %q. Penalty and damages provisions create a direct financial exposure if the obligation they attach to is breached, so the amounts and trigger conditions deserve close review.",
	"indemnity":       "This clause contains an indemnity obligation: %q. Agreeing to indemnify or hold the other party harmless means covering their losses and claims, which can exceed the contract value when the obligation is uncapped.",
	"termination":     "This clause governs termination: %q. Termination rights that are one-sided, immediate, or without notice can end the relationship abruptly and leave work or payments unsettled.",
	"arbitration":     "This clause routes disputes to arbitration: %q. Arbitration limits access to courts and the venue and rules chosen here determine cost and convenience if a dispute arises.",
	"auto_renewal":    "This clause renews the agreement automatically: %q. Auto-renewal and lock-in terms extend the commitment unless notice is given in a specific window, which is easy to miss.",
	"non_compete":     "This clause restricts competition: %q. Non-compete covenants can limit future business or employment, and their duration and geographic scope determine how burdensome they are.",
	"ip_transfer":     "This clause transfers intellectual property: %q. Assignment of IP ownership is usually permanent, so the scope of what is assigned and any carve-outs matter considerably.",
	"confidentiality": "This clause imposes confidentiality duties: %q. Broad or perpetual non-disclosure obligations can restrict ordinary business activity long after the agreement ends.",
	"liability":       "This clause shapes liability exposure: %q. Unlimited or uncapped liability removes the usual ceiling on what a breach can cost; a missing cap is itself a risk signal.",
	"ambiguity":       "This clause uses vague language: %q. Ambiguous terms such as reasonable or material are open to interpretation and tend to favour the party with more leverage in a dispute.",
}

// hindiTemplates mirrors englishTemplates for Hindi contracts.
var hindiTemplates = map[string]string{
	"penalty":         "इस खंड में दंड का प्रावधान है: %q। दंड (penalty) और हर्जाने की शर्तें दायित्व भंग होने पर सीधा वित्तीय जोखिम बनाती हैं, इसलिए राशि और शर्तों की सावधानी से समीक्षा करें।",
	"indemnity":       "इस खंड में क्षतिपूर्ति का दायित्व है: %q। क्षतिपूर्ति (indemnity) देने का अर्थ है दूसरे पक्ष के नुकसान और दावों की भरपाई करना, जो बिना सीमा के अनुबंध मूल्य से अधिक हो सकता है।",
	"termination":     "यह खंड समाप्ति से संबंधित है: %q। एकतरफ़ा या बिना सूचना के समाप्ति (termination) का अधिकार अनुबंध को अचानक समाप्त कर सकता है।",
	"arbitration":     "यह खंड विवादों को मध्यस्थता में भेजता है: %q। मध्यस्थता (arbitration) न्यायालय तक पहुंच सीमित करती है और चुना गया स्थान लागत तय करता है।",
	"auto_renewal":    "यह खंड अनुबंध को स्वतः नवीनीकृत करता है: %q। स्वतः नवीनीकरण (renewal) की शर्तें तय समय में सूचना न देने पर प्रतिबद्धता बढ़ा देती हैं।",
	"non_compete":     "यह खंड प्रतिस्पर्धा को प्रतिबंधित करता है: %q। गैर-प्रतिस्पर्धा (non-compete) की अवधि और भौगोलिक दायरा भविष्य के व्यवसाय को सीमित कर सकता है।",
	"ip_transfer":     "यह खंड बौद्धिक संपदा का हस्तांतरण करता है: %q। बौद्धिक संपदा (intellectual property) का समनुदेशन प्रायः स्थायी होता है, इसलिए दायरा महत्वपूर्ण है।",
	"confidentiality": "यह खंड गोपनीयता का दायित्व लगाता है: %q। व्यापक या असीमित गोपनीयता (confidentiality) की शर्तें अनुबंध समाप्ति के बाद भी कारोबार को बाधित कर सकती हैं।",
	"liability":       "यह खंड दायित्व की सीमा तय करता है: %q। असीमित दायित्व (liability) का अर्थ है कि उल्लंघन की लागत की कोई ऊपरी सीमा नहीं है।",
	"ambiguity":       "इस खंड की भाषा अस्पष्ट है: %q। उचित या यथोचित जैसे अस्पष्ट (vague) शब्द विवाद में व्याख्या के लिए खुले रहते हैं।",
}

// TemplateExplainer is the deterministic fallback explainer. It needs no
// network and no credentials, and its output is always valid for its
// category, so it is the default when no generative provider is set.
type TemplateExplainer struct{}

// NewTemplateExplainer creates the template explainer
func NewTemplateExplainer() *TemplateExplainer {
	return &TemplateExplainer{}
}

// Explain renders the category template for the finding
func (e *TemplateExplainer) Explain(ctx context.Context, req driven.ExplainRequest) (string, error) {
	templates := englishTemplates
	if req.Language == domain.LanguageHindi {
		templates = hindiTemplates
	}

	tmpl, ok := templates[req.Category]
	if !ok {
		return "", fmt.Errorf("no template for category %q", req.Category)
	}

	return fmt.Sprintf(tmpl, req.MatchedText), nil
}

// Model returns the template identifier
func (e *TemplateExplainer) Model() string {
	return "template"
}

// Source identifies template output for the audit record
func (e *TemplateExplainer) Source() domain.ExplanationSource {
	return domain.ExplanationSourceTemplate
}

// Ping always succeeds: templates are local
func (e *TemplateExplainer) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (e *TemplateExplainer) Close() error {
	return nil
}
