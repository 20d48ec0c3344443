package event

// Attachment is the tagged variant carried by messages and wall posts.
// Only the member matching Type is populated; everything else stays nil.
type Attachment struct {
	Type     string    `json:"type"`
	Photo    *Photo    `json:"photo,omitempty"`
	Video    *Video    `json:"video,omitempty"`
	Audio    *Audio    `json:"audio,omitempty"`
	Doc      *Doc      `json:"doc,omitempty"`
	Link     *Link     `json:"link,omitempty"`
	Poll     *Poll     `json:"poll,omitempty"`
	Wall     *Wall     `json:"wall,omitempty"`
	Sticker  *Sticker  `json:"sticker,omitempty"`
	Gift     *Gift     `json:"gift,omitempty"`
	Graffiti *Graffiti `json:"graffiti,omitempty"`
}

const (
	AttachPhoto    = "photo"
	AttachVideo    = "video"
	AttachAudio    = "audio"
	AttachDoc      = "doc"
	AttachLink     = "link"
	AttachPoll     = "poll"
	AttachWall     = "wall"
	AttachSticker  = "sticker"
	AttachGift     = "gift"
	AttachGraffiti = "graffiti"
)

type PhotoSize struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Photo struct {
	ID      int64       `json:"id"`
	OwnerID int64       `json:"owner_id"`
	Text    string      `json:"text"`
	Sizes   []PhotoSize `json:"sizes"`
}

// LargestSize returns the size with the biggest pixel area, or nil when
// the size list is empty.
func (p *Photo) LargestSize() *PhotoSize {
	var best *PhotoSize
	for i := range p.Sizes {
		s := &p.Sizes[i]
		if best == nil || s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}

type Video struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
	Title   string `json:"title"`
}

type Audio struct {
	ID     int64  `json:"id"`
	Artist string `json:"artist"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

type Doc struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Ext   string `json:"ext"`
	URL   string `json:"url"`
}

type Link struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Poll struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
}

// Wall is a repost of another wall post.
type Wall struct {
	ID     int64  `json:"id"`
	FromID int64  `json:"from_id"`
	Text   string `json:"text"`
}

type StickerImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Sticker struct {
	StickerID int64          `json:"sticker_id"`
	Images    []StickerImage `json:"images"`
}

// LargestImage returns the sticker render with the biggest pixel area.
func (s *Sticker) LargestImage() *StickerImage {
	var best *StickerImage
	for i := range s.Images {
		img := &s.Images[i]
		if best == nil || img.Width*img.Height > best.Width*best.Height {
			best = img
		}
	}
	return best
}

type Gift struct {
	ID       int64  `json:"id"`
	Thumb256 string `json:"thumb_256"`
}

type Graffiti struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}
