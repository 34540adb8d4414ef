package reply

// CannedGreetings answer casual chat without calling the generation backend.
var CannedGreetings = []string{
	"哈囉！我是你的 ESG 小幫手 🌱 有任何碳盤查、減碳或永續的問題都可以問我喔！",
	"你好呀 😊 今天想聊聊哪個永續議題呢？碳盤查、碳足跡還是 SBTi 都可以！",
	"嗨！很高興見到你 👋 有什麼 ESG 或碳管理的問題，儘管丟過來吧！",
	"謝謝你的訊息 🙌 想了解盤查、減量或氣候法規，隨時告訴我！",
}

// Apology replaces any reply the generation backend could not produce.
const Apology = "抱歉，我暫時無法處理您的請求。請稍後再試。"

func (s *Service) pickCanned() string {
	return CannedGreetings[s.source.IntN(len(CannedGreetings))]
}
