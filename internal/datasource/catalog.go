package datasource

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/packagewjx/process-risk/pkg/core"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type CatalogFormat string

const (
	CatalogJSON = CatalogFormat("json")
	CatalogYAML = CatalogFormat("yaml")
)

// CatalogFormatOf 根据文件扩展名判断格式，默认为json
func CatalogFormatOf(fileName string) CatalogFormat {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".yaml", ".yml":
		return CatalogYAML
	default:
		return CatalogJSON
	}
}

// LoadCatalog 读取优化建议。结构不是 字符串 -> 字符串列表 的映射时返回CatalogFormatError
func LoadCatalog(in io.Reader, format CatalogFormat) (core.Catalog, error) {
	content, err := ioutil.ReadAll(in)
	if err != nil {
		return nil, errors.Wrap(err, "读取优化建议文件出错")
	}

	var catalog core.Catalog
	switch format {
	case CatalogYAML:
		catalog, err = decodeYAML(content)
	default:
		catalog, err = decodeJSON(content)
	}
	if err != nil {
		return nil, core.NewCatalogFormatError(err)
	}
	return catalog, nil
}

func decodeJSON(content []byte) (core.Catalog, error) {
	var raw map[string][]*string
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, err
	}
	// null文档
	if raw == nil {
		return nil, errors.New("文档为空")
	}

	catalog := make(core.Catalog, len(raw))
	for name, list := range raw {
		if list == nil {
			return nil, fmt.Errorf("进程%s的建议列表为null", name)
		}
		suggestions := make([]string, len(list))
		for i, item := range list {
			if item == nil {
				return nil, fmt.Errorf("进程%s的第%d条建议为null", name, i+1)
			}
			suggestions[i] = *item
		}
		catalog[name] = suggestions
	}
	return catalog, nil
}

// decodeYAML 逐个检查节点的标签，只接受字符串，与json的规则保持一致
func decodeYAML(content []byte) (core.Catalog, error) {
	root := &yaml.Node{}
	if err := yaml.Unmarshal(content, root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("文档为空")
	}
	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("第%d行：顶层不是映射", mapping.Line)
	}

	catalog := make(core.Catalog, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		if !isString(key) {
			return nil, fmt.Errorf("第%d行：进程名%s不是字符串", key.Line, key.Value)
		}
		if value.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("第%d行：进程%s的建议不是列表", value.Line, key.Value)
		}
		suggestions := make([]string, len(value.Content))
		for j, item := range value.Content {
			if !isString(item) {
				return nil, fmt.Errorf("第%d行：进程%s的第%d条建议不是字符串", item.Line, key.Value, j+1)
			}
			suggestions[j] = item.Value
		}
		catalog[key.Value] = suggestions
	}
	return catalog, nil
}

func isString(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!str"
}
