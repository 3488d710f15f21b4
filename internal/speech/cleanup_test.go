package speech_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Jmi2020/TTSHowdy/internal/speech"
)

func TestCleaner(t *testing.T) {
	t.Parallel()

	cleaner := speech.NewCleaner()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text untouched",
			in:   "howdy partner",
			want: "howdy partner",
		},
		{
			name: "whitespace collapsed",
			in:   "howdy\n\n  partner\t!",
			want: "howdy partner !",
		},
		{
			name: "code fence dropped",
			in:   "run this:\n```sh\nrm -rf /tmp/x\n```\nand done",
			want: "run this: and done",
		},
		{
			name: "inline code dropped",
			in:   "use `go build` here",
			want: "use here",
		},
		{
			name: "url replaced with placeholder",
			in:   "see https://example.com/a?b=c for details",
			want: "see a link for details",
		},
		{
			name: "emphasis stripped",
			in:   "this is **very** *important*, pardner",
			want: "this is very important, pardner",
		},
		{
			name: "headings and bullets stripped",
			in:   "## Plan\n- saddle up\n- ride out",
			want: "Plan saddle up ride out",
		},
		{
			name: "nothing speakable",
			in:   "```\nonly code\n```",
			want: "",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, cleaner.Clean(testCase.in))
		})
	}
}
