package hybrid

import (
	"bytes"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// newConfiguration configuración pdfcpu sin directorio de usuario, validación relajada
// y sin object streams en lo que se escribe.
func newConfiguration(cmd model.CommandMode) *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.Cmd = cmd
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	return conf
}

// readContext lee y valida data. La validación internaliza los árboles de nombres,
// de modo que los adjuntos existentes quedan accesibles en ctx.Names.
func readContext(data []byte, cmd model.CommandMode) (*model.Context, error) {
	return api.ReadAndValidate(bytes.NewReader(data), newConfiguration(cmd))
}
