package reply

import (
	"strings"

	"github.com/dwizi/esg-advisor/internal/format"
)

var formattingRules = "請依以下格式回答問題，總長請控制在 200～220 字以內：\n" +
	"1. 開場 1 句話，語氣親切\n" +
	"2. 條列式拆解重點，最多 3 點，每點以 emoji 開頭（" + strings.Join(format.Markers, " ") + "）\n" +
	"3. 結尾用 1 句反問或引導提問\n\n" +
	"回答時：\n" +
	"- 不要用艱澀語言，也不要使用 Markdown 標題或粗體\n" +
	"- 只引用上方知識範圍內的標準；問題超出範圍時請直接說明\n" +
	"- 結尾可以加一句鼓勵或反問，例如「這樣能幫上忙嗎？還是你想看別的角度？」"

const followupInstruction = "【需要追問】使用者的問題較籠統且缺少背景。請先用一句話給出方向性的建議，" +
	"再具體詢問對方的產業別、公司規模或目前進度，以便提供更精準的建議。"

type PromptParts struct {
	Knowledge     string
	Summaries     string
	NeedsFollowup bool
}

// ComposeSystemPrompt joins the knowledge block, the reply formatting rules, any recent
// summaries and, when flagged, the follow-up instruction.
func ComposeSystemPrompt(parts PromptParts) string {
	sections := []string{}
	if knowledge := strings.TrimSpace(parts.Knowledge); knowledge != "" {
		sections = append(sections, knowledge)
	}
	sections = append(sections, formattingRules)
	if summaries := strings.TrimSpace(parts.Summaries); summaries != "" {
		sections = append(sections, summaries)
	}
	if parts.NeedsFollowup {
		sections = append(sections, followupInstruction)
	}
	return strings.Join(sections, "\n\n")
}
