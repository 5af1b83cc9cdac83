package langhint

import "testing"

func TestDetectScriptAndLang(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		in     string
		script string
		lang   string
	}{
		{
			name:   "latin stays language neutral",
			in:     "Meet me at the archive tomorrow morning at nine.",
			script: "Latin",
			lang:   "",
		},
		{
			name:   "greek is decisive",
			in:     "Η βιβλιοθήκη ανοίγει στις εννέα το πρωί κάθε μέρα.",
			script: "Greek",
			lang:   "el",
		},
		{
			name:   "short greek gives script only",
			in:     "εννέα",
			script: "Greek",
			lang:   "",
		},
		{
			name:   "hangul",
			in:     "내일 아침 아홉 시에 도서관 앞에서 만나요 그리고 같이 공부해요",
			script: "Hangul",
			lang:   "ko",
		},
		{
			name:   "arabic",
			in:     "تفتح المكتبة أبوابها في التاسعة صباحا كل يوم من أيام الأسبوع",
			script: "Arabic",
			lang:   "ar",
		},
		{
			name: "kana presence marks japanese even under a han majority",
			in: "図書館図書館図書館図書館図書館図書館図書館図書館は" +
				"明日ひらきます",
			script: "Han",
			lang:   "ja",
		},
		{
			name:   "pure han stays language neutral",
			in:     "圖書館明天早上九點開門歡迎大家光臨參觀學習交流討論",
			script: "Han",
			lang:   "",
		},
		{
			name:   "cyrillic stays language neutral",
			in:     "Библиотека открывается завтра в девять часов утра.",
			script: "Cyrillic",
			lang:   "",
		},
		{
			name:   "digits and punctuation carry no script",
			in:     "12345 --- !!! (67890)",
			script: "",
			lang:   "",
		},
		{
			name:   "empty input",
			in:     "",
			script: "",
			lang:   "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			script, lang := DetectScriptAndLang(tc.in)
			if script != tc.script || lang != tc.lang {
				t.Fatalf("got (%q, %q), want (%q, %q)", script, lang, tc.script, tc.lang)
			}
		})
	}
}

func TestDetectScriptAndLang_MixedBodyPicksMajority(t *testing.T) {
	t.Parallel()

	// a latin sentence with one embedded greek word stays Latin
	script, _ := DetectScriptAndLang("The word βιβλίο appears once in this otherwise english sentence.")
	if script != "Latin" {
		t.Fatalf("script = %q, want Latin", script)
	}
}
