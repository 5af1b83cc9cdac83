package detector

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// fragment component classes; a group never holds two fragments of the
// same class
const (
	clsDate = 1 << iota
	clsWeekday
	clsRel
	clsTime
	clsDur
)

// dateFrag is a single template hit before adjacent fragments are merged
// into one mention ("5pm" + "on" + "2024-01-01" becomes a single span)
type dateFrag struct {
	start, end int
	cls        int

	year  int
	month time.Month
	day   int

	weekday time.Weekday
	wdMod   string

	hour, minute, second int

	rel int64
	dur time.Duration

	zone    string
	zoneOff *int
}

// words allowed between two fragments of the same mention
var dateGlue = map[string]struct{}{
	"on": {}, "at": {}, "the": {}, "of": {}, "by": {}, "from": {}, "around": {}, "@": {},
}

func (d *Detector) scanDates(text string, out []Match) []Match {
	frags := d.collectDateFrags(text)
	if len(frags) == 0 {
		return out
	}

	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].start != frags[j].start {
			return frags[i].start < frags[j].start
		}
		return frags[i].end > frags[j].end
	})

	// leftmost longest fragment wins; "2024-01-01 14:30" must not also
	// surface its bare date and bare time
	kept := make([]dateFrag, 0, len(frags))
	lastEnd := -1
	for _, f := range frags {
		if f.start < lastEnd {
			continue
		}
		kept = append(kept, f)
		lastEnd = f.end
	}

	cur := []dateFrag{kept[0]}
	mask := kept[0].cls
	flush := func() {
		out = append(out, d.buildDate(cur))
	}
	for _, f := range kept[1:] {
		prev := cur[len(cur)-1]
		if f.cls&mask == 0 && glueOK(text[prev.end:f.start]) {
			cur = append(cur, f)
			mask |= f.cls
			continue
		}
		flush()
		cur = []dateFrag{f}
		mask = f.cls
	}
	flush()
	return out
}

// glueOK reports whether the text between two fragments is only connective
// filler
func glueOK(gap string) bool {
	if len(gap) > 12 {
		return false
	}
	fields := strings.FieldsFunc(strings.ToLower(gap), func(r rune) bool {
		return r == ' ' || r == '\t' || r == ',' || r == '.'
	})
	for _, w := range fields {
		if _, ok := dateGlue[w]; !ok {
			return false
		}
	}
	return true
}

func (d *Detector) collectDateFrags(text string) []dateFrag {
	var frags []dateFrag
	add := func(f dateFrag, ok bool) {
		if ok && boundaryOK(text, f.start, f.end) {
			frags = append(frags, f)
		}
	}

	for _, m := range d.re("date_iso_datetime").FindAllStringSubmatchIndex(text, -1) {
		add(d.parseISODateTime(text, m))
	}
	for _, m := range d.re("date_iso").FindAllStringSubmatchIndex(text, -1) {
		add(d.parseISODate(text, m))
	}
	for _, m := range d.re("date_slash").FindAllStringSubmatchIndex(text, -1) {
		add(d.parseSlashDate(text, m))
	}
	for _, m := range d.re("date_month_day").FindAllStringSubmatchIndex(text, -1) {
		add(d.parseMonthDay(text, m))
	}
	for _, m := range d.re("date_day_month").FindAllStringSubmatchIndex(text, -1) {
		add(d.parseDayMonth(text, m))
	}
	for _, m := range d.re("date_weekday").FindAllStringSubmatchIndex(text, -1) {
		add(d.parseWeekday(text, m))
	}
	for _, m := range d.re("date_relative").FindAllStringSubmatchIndex(text, -1) {
		add(d.parseRelative(text, m))
	}
	for _, m := range d.re("date_in_amount").FindAllStringSubmatchIndex(text, -1) {
		add(d.parseInAmount(text, m))
	}
	for _, m := range d.re("time_clock").FindAllStringSubmatchIndex(text, -1) {
		add(d.parseClock(text, m))
	}
	for _, m := range d.re("time_half").FindAllStringSubmatchIndex(text, -1) {
		add(d.parseHalf(text, m))
	}
	for _, m := range d.re("time_named").FindAllStringSubmatchIndex(text, -1) {
		add(d.parseNamed(text, m))
	}
	for _, m := range d.re("time_range").FindAllStringSubmatchIndex(text, -1) {
		add(d.parseRange(text, m))
	}
	for _, m := range d.re("duration_for").FindAllStringSubmatchIndex(text, -1) {
		add(d.parseFor(text, m))
	}
	return frags
}

func groupText(s string, m []int, i int) string {
	lo, hi := m[2*i], m[2*i+1]
	if lo < 0 {
		return ""
	}
	return s[lo:hi]
}

func groupInt(s string, m []int, i int) int {
	v, _ := strconv.Atoi(groupText(s, m, i))
	return v
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func validDay(year int, month time.Month, day int) bool {
	vy := year
	if vy == 0 {
		vy = 2016
	}
	return day >= 1 && day <= daysIn(vy, month)
}

func (d *Detector) parseISODateTime(s string, m []int) (dateFrag, bool) {
	f := dateFrag{start: m[0], end: m[1], cls: clsDate | clsTime}
	f.year = groupInt(s, m, 1)
	f.month = time.Month(groupInt(s, m, 2))
	f.day = groupInt(s, m, 3)
	f.hour = groupInt(s, m, 4)
	f.minute = groupInt(s, m, 5)
	f.second = groupInt(s, m, 6)
	if f.month < 1 || f.month > 12 || !validDay(f.year, f.month, f.day) {
		return f, false
	}
	if f.hour > 23 || f.minute > 59 || f.second > 59 {
		return f, false
	}
	if z := strings.ToLower(groupText(s, m, 7)); z != "" {
		if pz, ok := d.p.ZoneByAbbr[z]; ok {
			off := pz.OffsetSeconds
			f.zone, f.zoneOff = pz.Name, &off
		} else {
			off, ok := parseUTCOffset(z)
			if !ok {
				return f, false
			}
			f.zoneOff = &off
		}
	}
	return f, true
}

// parseUTCOffset parses +hh:mm, -hhmm and friends into seconds east of UTC
func parseUTCOffset(z string) (int, bool) {
	if len(z) < 3 || (z[0] != '+' && z[0] != '-') {
		return 0, false
	}
	digits := strings.ReplaceAll(z[1:], ":", "")
	if len(digits) != 4 {
		return 0, false
	}
	hh, err := strconv.Atoi(digits[:2])
	if err != nil || hh > 23 {
		return 0, false
	}
	mm, err := strconv.Atoi(digits[2:])
	if err != nil || mm > 59 {
		return 0, false
	}
	off := hh*3600 + mm*60
	if z[0] == '-' {
		off = -off
	}
	return off, true
}

func (d *Detector) parseISODate(s string, m []int) (dateFrag, bool) {
	f := dateFrag{start: m[0], end: m[1], cls: clsDate}
	f.year = groupInt(s, m, 1)
	f.month = time.Month(groupInt(s, m, 2))
	f.day = groupInt(s, m, 3)
	return f, f.month >= 1 && f.month <= 12 && validDay(f.year, f.month, f.day)
}

func (d *Detector) parseSlashDate(s string, m []int) (dateFrag, bool) {
	f := dateFrag{start: m[0], end: m[1], cls: clsDate}
	mo, dy, yr := groupInt(s, m, 1), groupInt(s, m, 2), groupInt(s, m, 3)
	if mo > 12 {
		if dy > 12 {
			return f, false
		}
		mo, dy = dy, mo
	}
	if yr < 100 {
		if yr < 70 {
			yr += 2000
		} else {
			yr += 1900
		}
	}
	f.year, f.month, f.day = yr, time.Month(mo), dy
	return f, f.month >= 1 && validDay(f.year, f.month, f.day)
}

func (d *Detector) parseMonthDay(s string, m []int) (dateFrag, bool) {
	f := dateFrag{start: m[0], end: m[1], cls: clsDate}
	if wd := strings.ToLower(groupText(s, m, 1)); wd != "" {
		if w, ok := d.p.WeekdayByName[wd]; ok {
			f.weekday = w
			f.cls |= clsWeekday
		}
	}
	mo, ok := d.p.MonthByName[strings.ToLower(groupText(s, m, 2))]
	if !ok {
		return f, false
	}
	f.month = mo
	f.day = groupInt(s, m, 3)
	f.year = groupInt(s, m, 4)
	return f, validDay(f.year, f.month, f.day)
}

func (d *Detector) parseDayMonth(s string, m []int) (dateFrag, bool) {
	f := dateFrag{start: m[0], end: m[1], cls: clsDate}
	f.day = groupInt(s, m, 1)
	mo, ok := d.p.MonthByName[strings.ToLower(groupText(s, m, 2))]
	if !ok {
		return f, false
	}
	f.month = mo
	f.year = groupInt(s, m, 3)
	return f, validDay(f.year, f.month, f.day)
}

func (d *Detector) parseWeekday(s string, m []int) (dateFrag, bool) {
	f := dateFrag{start: m[0], end: m[1], cls: clsWeekday}
	f.wdMod = strings.ToLower(groupText(s, m, 1))
	w, ok := d.p.WeekdayByName[strings.ToLower(groupText(s, m, 2))]
	if !ok {
		return f, false
	}
	f.weekday = w
	return f, true
}

func (d *Detector) parseRelative(s string, m []int) (dateFrag, bool) {
	f := dateFrag{start: m[0], end: m[1], cls: clsRel}
	secs, ok := d.p.Relatives[strings.ToLower(groupText(s, m, 1))]
	if !ok {
		return f, false
	}
	f.rel = secs
	return f, true
}

func unitSeconds(unit string) int64 {
	switch strings.TrimSuffix(unit, "s") {
	case "minute":
		return 60
	case "hour":
		return 3600
	case "day":
		return 86400
	case "week":
		return 604800
	case "month":
		return 2592000
	}
	return 0
}

func (d *Detector) parseInAmount(s string, m []int) (dateFrag, bool) {
	f := dateFrag{start: m[0], end: m[1], cls: clsRel}
	us := unitSeconds(strings.ToLower(groupText(s, m, 2)))
	if us == 0 {
		return f, false
	}
	f.rel = int64(groupInt(s, m, 1)) * us
	return f, true
}

func applyMeridiem(hour int, ap string) (int, bool) {
	switch ap {
	case "":
		return hour, hour <= 23
	case "am":
		return hour % 12, hour >= 1 && hour <= 12
	case "pm":
		return hour%12 + 12, hour >= 1 && hour <= 12
	}
	return 0, false
}

func (d *Detector) parseClock(s string, m []int) (dateFrag, bool) {
	f := dateFrag{start: m[0], end: m[1], cls: clsTime}
	h, ok := applyMeridiem(groupInt(s, m, 1), strings.ToLower(groupText(s, m, 4)))
	if !ok {
		return f, false
	}
	f.hour = h
	f.minute = groupInt(s, m, 2)
	f.second = groupInt(s, m, 3)
	if f.minute > 59 || f.second > 59 {
		return f, false
	}
	if z := strings.ToLower(groupText(s, m, 5)); z != "" {
		if pz, ok := d.p.ZoneByAbbr[z]; ok {
			off := pz.OffsetSeconds
			f.zone, f.zoneOff = pz.Name, &off
		}
	}
	return f, true
}

func (d *Detector) parseHalf(s string, m []int) (dateFrag, bool) {
	f := dateFrag{start: m[0], end: m[1], cls: clsTime}
	h, ok := applyMeridiem(groupInt(s, m, 1), strings.ToLower(groupText(s, m, 2)))
	if !ok || groupText(s, m, 2) == "" {
		return f, false
	}
	f.hour = h
	if z := strings.ToLower(groupText(s, m, 3)); z != "" {
		if pz, ok := d.p.ZoneByAbbr[z]; ok {
			off := pz.OffsetSeconds
			f.zone, f.zoneOff = pz.Name, &off
		}
	}
	return f, true
}

func (d *Detector) parseNamed(s string, m []int) (dateFrag, bool) {
	f := dateFrag{start: m[0], end: m[1], cls: clsTime}
	if strings.EqualFold(groupText(s, m, 1), "noon") {
		f.hour = 12
	}
	return f, true
}

func (d *Detector) parseRange(s string, m []int) (dateFrag, bool) {
	f := dateFrag{start: m[0], end: m[1], cls: clsTime | clsDur}
	h1, m1 := groupInt(s, m, 1), groupInt(s, m, 2)
	h2, m2 := groupInt(s, m, 4), groupInt(s, m, 5)
	ap1 := strings.ToLower(groupText(s, m, 3))
	ap2 := strings.ToLower(groupText(s, m, 6))
	if m1 > 59 || m2 > 59 {
		return f, false
	}
	inferred := false
	if ap1 == "" {
		ap1 = ap2
		inferred = true
	}
	n1, ok1 := applyMeridiem(h1, ap1)
	n2, ok2 := applyMeridiem(h2, ap2)
	if !ok1 || !ok2 {
		return f, false
	}
	startMin := n1*60 + m1
	endMin := n2*60 + m2
	if endMin <= startMin && inferred {
		// "11 to 1pm" reads as 11am
		if flipped, ok := applyMeridiem(h1, flipMeridiem(ap1)); ok {
			startMin = flipped*60 + m1
		}
	}
	if endMin <= startMin {
		endMin += 24 * 60
	}
	f.hour, f.minute = startMin/60, startMin%60
	f.dur = time.Duration(endMin-startMin) * time.Minute
	return f, true
}

func flipMeridiem(ap string) string {
	if ap == "am" {
		return "pm"
	}
	return "am"
}

func (d *Detector) parseFor(s string, m []int) (dateFrag, bool) {
	f := dateFrag{start: m[0], end: m[1], cls: clsDur}
	us := unitSeconds(strings.ToLower(groupText(s, m, 2)))
	if us == 0 {
		return f, false
	}
	f.dur = time.Duration(int64(groupInt(s, m, 1))*us) * time.Second
	return f, true
}

// buildDate folds one fragment group into a single date match. Without a
// reference time, relative phrases surface as a duration from now and
// anything needing an anchor leaves the instant unset
func (d *Detector) buildDate(g []dateFrag) Match {
	start, end := g[0].start, g[0].end
	var (
		hasDate, hasWD, hasRel, hasTime, hasDur bool

		year       int
		month      time.Month
		day        int
		wd         time.Weekday
		wdMod      string
		hh, mi, ss int
		rel        int64
		dur        time.Duration
		zone       string
		zoneOff    *int
	)
	for _, f := range g {
		if f.start < start {
			start = f.start
		}
		if f.end > end {
			end = f.end
		}
		if f.cls&clsDate != 0 && !hasDate {
			hasDate = true
			year, month, day = f.year, f.month, f.day
		}
		if f.cls&clsWeekday != 0 && !hasWD {
			hasWD = true
			wd, wdMod = f.weekday, f.wdMod
		}
		if f.cls&clsRel != 0 && !hasRel {
			hasRel = true
			rel = f.rel
		}
		if f.cls&clsTime != 0 && !hasTime {
			hasTime = true
			hh, mi, ss = f.hour, f.minute, f.second
		}
		if f.cls&clsDur != 0 && !hasDur {
			hasDur = true
			dur = f.dur
		}
		if f.zoneOff != nil && zoneOff == nil {
			zone, zoneOff = f.zone, f.zoneOff
		}
	}

	ref := d.opts.Ref
	loc := time.UTC
	if !ref.IsZero() {
		loc = ref.Location()
	}
	if zoneOff != nil {
		loc = time.FixedZone(zone, *zoneOff)
	}

	info := DateInfo{Zone: zone}
	if hasDur {
		info.Duration = dur
	}

	var when time.Time
	resolved := false
	switch {
	case hasDate && year != 0:
		when = time.Date(year, month, day, hh, mi, ss, 0, loc)
		resolved = true
	case hasDate:
		if !ref.IsZero() {
			y := ref.Year()
			when = time.Date(y, month, day, hh, mi, ss, 0, loc)
			if endOfDay(when).Before(ref) {
				when = time.Date(y+1, month, day, hh, mi, ss, 0, loc)
			}
			resolved = true
		}
	case hasRel:
		if !ref.IsZero() {
			base := ref.Add(time.Duration(rel) * time.Second)
			if hasTime {
				by, bm, bd := base.In(loc).Date()
				when = time.Date(by, bm, bd, hh, mi, ss, 0, loc)
			} else {
				when = base
			}
			resolved = true
		} else if !hasDur {
			info.Duration = time.Duration(rel) * time.Second
		}
	case hasWD:
		if !ref.IsZero() {
			r := ref.In(loc)
			delta := (int(wd) - int(r.Weekday()) + 7) % 7
			switch wdMod {
			case "next":
				if delta == 0 {
					delta = 7
				}
			case "last":
				delta = -((int(r.Weekday()) - int(wd) + 7) % 7)
				if delta == 0 {
					delta = -7
				}
			}
			r = r.AddDate(0, 0, delta)
			when = time.Date(r.Year(), r.Month(), r.Day(), hh, mi, ss, 0, loc)
			resolved = true
		}
	case hasTime:
		if !ref.IsZero() {
			r := ref.In(loc)
			when = time.Date(r.Year(), r.Month(), r.Day(), hh, mi, ss, 0, loc)
			if when.Before(ref) {
				when = when.AddDate(0, 0, 1)
			}
			resolved = true
		}
	}
	if resolved {
		w := when
		info.When = &w
	}
	return Match{Category: CategoryDate, Start: start, End: end, Date: &info}
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
