package models

import "encoding/json"

// Picture is one uploaded image with a URL per size variant (normal, big,
// zoom, ...), serialized flat next to its _id.
type Picture struct {
	ID    string
	Sizes map[string]PictureSize
}

type PictureSize struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

func (p Picture) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(p.Sizes)+1)
	for name, size := range p.Sizes {
		out[name] = size
	}
	if p.ID != "" {
		out["_id"] = p.ID
	}
	return json.Marshal(out)
}

func (p *Picture) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Picture{Sizes: make(map[string]PictureSize, len(raw))}
	for k, v := range raw {
		if k == "_id" {
			if err := json.Unmarshal(v, &p.ID); err != nil {
				return err
			}
			continue
		}
		var size PictureSize
		if err := json.Unmarshal(v, &size); err != nil {
			continue
		}
		p.Sizes[k] = size
	}
	return nil
}
