package concepts

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?;\n]+`)
	tokenRe         = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}\-']*`)
)

// KeywordExtractor scores n-gram candidates with unsupervised statistical
// features in the style of YAKE: casing, position, frequency, context
// dispersion and sentence spread. Lower raw scores are better.
type KeywordExtractor struct {
	MaxNGram int
	Top      int
}

func NewKeywordExtractor(maxNGram, top int) *KeywordExtractor {
	if maxNGram <= 0 {
		maxNGram = 3
	}
	if top <= 0 {
		top = 10
	}
	return &KeywordExtractor{MaxNGram: maxNGram, Top: top}
}

type termStats struct {
	tf        float64
	upper     float64
	acronym   float64
	positions []int
	sentences map[int]struct{}
	left      map[string]int
	right     map[string]int
	score     float64
}

type token struct {
	raw  string
	norm string
	sent int
}

// Candidates returns up to Top keyphrases, best first.
func (k *KeywordExtractor) Candidates(text string) []string {
	sentences := sentenceSplitRe.Split(text, -1)
	var sents [][]token
	for si, s := range sentences {
		raw := tokenRe.FindAllString(s, -1)
		if len(raw) == 0 {
			continue
		}
		toks := make([]token, len(raw))
		for i, r := range raw {
			toks[i] = token{raw: r, norm: strings.ToLower(r), sent: si}
		}
		sents = append(sents, toks)
	}
	if len(sents) == 0 {
		return nil
	}

	stats := k.termFeatures(sents)

	type cand struct {
		words []string
		tf    float64
		score float64
	}
	cands := map[string]*cand{}
	for _, toks := range sents {
		for i := range toks {
			for n := 1; n <= k.MaxNGram && i+n <= len(toks); n++ {
				gram := toks[i : i+n]
				if isStopword(gram[0].norm) || isStopword(gram[n-1].norm) || !usable(gram) {
					continue
				}
				words := make([]string, n)
				for j, t := range gram {
					words[j] = t.norm
				}
				key := strings.Join(words, " ")
				c, ok := cands[key]
				if !ok {
					c = &cand{words: words}
					cands[key] = c
				}
				c.tf++
			}
		}
	}

	for _, c := range cands {
		prod, sum := 1.0, 0.0
		for _, w := range c.words {
			st, ok := stats[w]
			if !ok || isStopword(w) {
				continue
			}
			prod *= st.score
			sum += st.score
		}
		c.score = prod / (c.tf * (1 + sum))
	}

	keys := make([]string, 0, len(cands))
	for key := range cands {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		si, sj := cands[keys[i]].score, cands[keys[j]].score
		if si != sj {
			return si < sj
		}
		return keys[i] < keys[j]
	})

	out := make([]string, 0, k.Top)
	for _, key := range keys {
		if len(out) >= k.Top {
			break
		}
		if nearDuplicate(key, out) {
			continue
		}
		out = append(out, key)
	}
	return out
}

func (k *KeywordExtractor) termFeatures(sents [][]token) map[string]*termStats {
	stats := map[string]*termStats{}
	for _, toks := range sents {
		for i, t := range toks {
			if isStopword(t.norm) || !hasLetter(t.norm) {
				continue
			}
			st, ok := stats[t.norm]
			if !ok {
				st = &termStats{sentences: map[int]struct{}{}, left: map[string]int{}, right: map[string]int{}}
				stats[t.norm] = st
			}
			st.tf++
			if isAcronym(t.raw) {
				st.acronym++
			} else if i > 0 && unicode.IsUpper([]rune(t.raw)[0]) {
				st.upper++
			}
			st.positions = append(st.positions, t.sent)
			st.sentences[t.sent] = struct{}{}
			if i > 0 {
				st.left[toks[i-1].norm]++
			}
			if i+1 < len(toks) {
				st.right[toks[i+1].norm]++
			}
		}
	}
	if len(stats) == 0 {
		return stats
	}

	var tfs []float64
	maxTF := 0.0
	for _, st := range stats {
		tfs = append(tfs, st.tf)
		maxTF = math.Max(maxTF, st.tf)
	}
	mean, std := meanStd(tfs)
	nSent := float64(len(sents))

	for _, st := range stats {
		tCase := math.Max(st.upper, st.acronym) / (1 + math.Log(st.tf))
		tPos := math.Log(math.Log(3 + median(st.positions)))
		tNorm := st.tf / (mean + std)
		tRel := 1 + (dispersion(st.left)+dispersion(st.right))*st.tf/maxTF
		tSent := float64(len(st.sentences)) / nSent
		st.score = (tRel * tPos) / (tCase + tNorm/tRel + tSent/tRel)
	}
	return stats
}

func dispersion(ctx map[string]int) float64 {
	total := 0
	for _, c := range ctx {
		total += c
	}
	if total == 0 {
		return 0
	}
	return float64(len(ctx)) / float64(total)
}

func meanStd(xs []float64) (float64, float64) {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var v float64
	for _, x := range xs {
		v += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(v / float64(len(xs)))
}

func median(xs []int) float64 {
	c := append([]int(nil), xs...)
	sort.Ints(c)
	n := len(c)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return float64(c[n/2])
	}
	return float64(c[n/2-1]+c[n/2]) / 2
}

func usable(gram []token) bool {
	for _, t := range gram {
		if !hasLetter(t.norm) {
			return false
		}
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func isAcronym(s string) bool {
	if len(s) < 2 {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return hasLetter(s)
}

// nearDuplicate drops a candidate that only reorders or repeats the words of
// one already chosen.
func nearDuplicate(key string, chosen []string) bool {
	ws := wordSet(key)
	for _, c := range chosen {
		if c == key {
			return true
		}
		cs := wordSet(c)
		if len(cs) == len(ws) {
			same := true
			for w := range ws {
				if _, ok := cs[w]; !ok {
					same = false
					break
				}
			}
			if same {
				return true
			}
		}
	}
	return false
}

func wordSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.Fields(s) {
		out[w] = struct{}{}
	}
	return out
}
