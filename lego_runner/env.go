package lego_runner

import "github.com/certkit/Legra/utils"

var (
	Env_LegoBinary     = utils.EnvOrDefault("LEGO_BINARY", "lego")
	Env_WorkDir        = utils.EnvOrDefault("LEGO_WORK_DIR", "/tmp")
	Env_CSRPath        = utils.EnvOrDefault("LEGO_CSR_PATH", "/tmp/csr.pem")
	Env_CertsDir       = utils.EnvOrDefault("LEGO_CERTS_DIR", "/tmp/.lego/certificates")
	Env_LegoTimeoutSec = utils.MustEnvOrDefaultInt64("LEGO_TIMEOUT_SEC", 300)
	Env_MaxStderrLines = utils.MustEnvOrDefaultInt64("LEGO_MAX_STDERR_LINES", 64)
)
