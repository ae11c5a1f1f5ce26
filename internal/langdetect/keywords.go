package langdetect

// Japanese particles, endings and set phrases. Matched as substrings since
// Japanese has no word separators.
var japaneseKeywords = []string{
	"です",
	"ます",
	"ました",
	"ません",
	"ください",
	"ありがとう",
	"すみません",
	"こんにちは",
	"おはよう",
	"こんばんは",
	"よろしく",
	"でしょう",
	"だから",
	"けど",
}

// Vietnamese function words. Matched on whole words.
var vietnameseKeywords = []string{
	"không",
	"của",
	"và",
	"là",
	"có",
	"được",
	"tôi",
	"bạn",
	"này",
	"những",
	"các",
	"một",
	"với",
	"cho",
	"rất",
	"đã",
	"sẽ",
	"em",
	"anh",
	"chị",
}

// Vietnamese phrases spanning several words.
var vietnamesePhrases = []string{
	"cảm ơn",
	"xin chào",
	"xin lỗi",
	"tạm biệt",
}

// Letters that only occur in Vietnamese among the scripts we see, lowercase.
const vietnameseLetters = "àáảãạăằắẳẵặâầấẩẫậ" +
	"èéẻẽẹêềếểễệ" +
	"ìíỉĩị" +
	"òóỏõọôồốổỗộơờớởỡợ" +
	"ùúủũụưừứửữự" +
	"ỳýỷỹỵ" +
	"đ"

// Japanese punctuation and marks; scored lower than kana.
const japanesePunctuation = "。、「」『』・ー〜！？（）："
