package service

// ActionKind selects how a matched intent produces its reply.
type ActionKind string

const (
	// ActionStatic replies with the action's fixed texts.
	ActionStatic ActionKind = "STATIC"
	// ActionProfile looks up the sender's profile and replies with it.
	ActionProfile ActionKind = "PROFILE"
	// ActionFallback replies with the help sequence for unknown input.
	ActionFallback ActionKind = "FALLBACK"
)

// ReplyAction is the outcome of classifying a text message.
type ReplyAction struct {
	Kind  ActionKind `json:"kind"`
	Texts []string   `json:"texts,omitempty"`
}

// IntentRule maps an exact input string to an action.
type IntentRule struct {
	Match  string      `json:"match"`
	Action ReplyAction `json:"action"`
}

const (
	sweetnessPrompt = "หวานน้อย(1)\nหวานมาก(2)\nหวานปกติ(3)"
	orderAck        = "สั่งอาหารค้าบบบบ"
	greeting        = "สวัสดีค่ะ รับอะไรดีคะเลือกหมวดหมูตามรูปได้เลยค่ะ"
)

var commandListing = []string{
	"ไลน์บอทของทางร้านจะมีคำสั่งดังนี้: ",
	"พิมพ์ 'order' : เพื่อเข้าสู่ขั้นตอนการสั่งอาหาร",
	"พิมพ์ 'help' : เพื่อดูวิธีใช้งานไลน์บอท",
}

// FallbackTexts is the reply to any text no rule matches.
var FallbackTexts = append([]string{"ขออภัย ทางเราไม่ได้มีคำสั่งนั้น"}, commandListing...)

// DefaultRules is the shop's keyword table, evaluated top to bottom.
func DefaultRules() []IntentRule {
	rules := []IntentRule{
		{Match: "profile", Action: ReplyAction{Kind: ActionProfile}},
		{Match: "order", Action: static(orderAck)},
		{Match: "ขนมหวาน", Action: static(
			"Menu ขนมหวาน",
			"ชีสเค้ก(D1)\tราคา 39บาท\nสตรอว์เบอร์รีชีสเค้ก(D2)\tราคา 39บาท\nทีรามิสุ(D3)\tราคา 39บาท\nบราวน์ชูการ์โทสต์(D4)\tราคา 39บาท\nเค้กเรดเวลเวท(D5)\tราคา 39บาท\n",
		)},
		{Match: "อาหาร", Action: static(
			"MEnu อาหาร",
			"ไข่กระทะ(F1)\tราคา 40บาท\nมินิพิซซ่าแฮมชีส(F2)\tราคา 59บาท\nแซนด์วิชไก่กรอบ(F3)\tราคา 39บาท\nสลัดไข่เจียว(F4)\tราคา 35บาท\nสเต๊กหมูพันเบคอน(F5)\tราคา 69บาท\n",
		)},
		{Match: "กาแฟ", Action: static(
			"Menu กาแฟ",
			"เอสเพรสโซ(C1)\tราคา 45บาท\nอเมริกาโน(C2)\tราคา 45บาท\nลาเต้(C3)\tราคา 45บาท\nคาปูชิโน(C4)\tราคา 45บาท\nมอคค่า(C5)\tราคา 45บาท\n",
		)},
		{Match: "ชานม", Action: static(
			"Menu ชานม",
			"ชานมไต้หวัน(M1)\tราคา 40บาท\nมัทฉะญี่ปุ่น(M2)\tราคา 40บาท\nโกโก้(M3)\tราคา 40บาท\nชาลาวา(M4)\tราคา 40บาท\nชาชีส(M5)\tราคา 40บาท\nชาเขียว(M6)\tราคา 40บาท\nชาไทย(M7)\tราคา 40บาท",
		)},
	}
	for _, code := range []string{"M1", "M2", "M3", "M4", "M5", "M6", "M7"} {
		rules = append(rules, IntentRule{Match: code, Action: static(sweetnessPrompt)})
	}
	rules = append(rules,
		IntentRule{Match: "สวัสดี", Action: static(greeting)},
		IntentRule{Match: "help", Action: static(commandListing...)},
	)
	return rules
}

// IntentEngine classifies text by exact, case-sensitive match. The first
// matching rule wins; unmatched text gets the fallback action. Rules are
// fixed at construction and safe for concurrent use.
type IntentEngine struct {
	rules    []IntentRule
	fallback ReplyAction
}

// NewIntentEngine builds an engine over the default rule table.
func NewIntentEngine() *IntentEngine {
	return NewIntentEngineWithRules(DefaultRules())
}

// NewIntentEngineWithRules builds an engine over a copy of rules.
func NewIntentEngineWithRules(rules []IntentRule) *IntentEngine {
	return &IntentEngine{
		rules:    cloneRules(rules),
		fallback: ReplyAction{Kind: ActionFallback, Texts: append([]string(nil), FallbackTexts...)},
	}
}

// Classify returns the action for text.
func (e *IntentEngine) Classify(text string) ReplyAction {
	for _, rule := range e.rules {
		if rule.Match == text {
			return cloneAction(rule.Action)
		}
	}
	return cloneAction(e.fallback)
}

// Rules returns a copy of the rule table in evaluation order.
func (e *IntentEngine) Rules() []IntentRule {
	return cloneRules(e.rules)
}

func static(texts ...string) ReplyAction {
	return ReplyAction{Kind: ActionStatic, Texts: texts}
}

func cloneAction(a ReplyAction) ReplyAction {
	a.Texts = append([]string(nil), a.Texts...)
	return a
}

func cloneRules(rules []IntentRule) []IntentRule {
	out := make([]IntentRule, len(rules))
	for i, r := range rules {
		out[i] = IntentRule{Match: r.Match, Action: cloneAction(r.Action)}
	}
	return out
}
